package game

type Direction string

const (
	DirUp        Direction = "up"
	DirDown      Direction = "down"
	DirLeft      Direction = "left"
	DirRight     Direction = "right"
	DirUpLeft    Direction = "up-left"
	DirUpRight   Direction = "up-right"
	DirDownLeft  Direction = "down-left"
	DirDownRight Direction = "down-right"
)

// Heading derives the facing direction from a displacement in screen
// coordinates, where +y points down. A zero displacement keeps prev.
func Heading(dx, dy float64, prev Direction) Direction {
	switch {
	case dx == 0 && dy == 0:
		return prev
	case dx == 0 && dy < 0:
		return DirUp
	case dx == 0:
		return DirDown
	case dy == 0 && dx < 0:
		return DirLeft
	case dy == 0:
		return DirRight
	case dx < 0 && dy < 0:
		return DirUpLeft
	case dy < 0:
		return DirUpRight
	case dx < 0:
		return DirDownLeft
	default:
		return DirDownRight
	}
}
