package tilemap

import "fmt"

// TileSize is the width and height of one grid cell in world units.
const TileSize = 32

// Code identifies the terrain or structure occupying one grid cell.
// The numeric values are part of the wire format.
type Code int

const (
	Grass Code = iota
	Water
	Tree
	Dirt
	Flower
	Bush
	Rock
	StoneWall
	Fence
	WoodFloor
	HouseWall
	Bonfire
)

var codeNames = map[Code]string{
	Grass:     "grass",
	Water:     "water",
	Tree:      "tree",
	Dirt:      "dirt",
	Flower:    "flower",
	Bush:      "bush",
	Rock:      "rock",
	StoneWall: "stone_wall",
	Fence:     "fence",
	WoodFloor: "wood_floor",
	HouseWall: "house_wall",
	Bonfire:   "bonfire",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("tile(%d)", int(c))
}

// Valid reports whether c belongs to the closed set of tile codes.
func (c Code) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

// Walkable reports whether a player may stand on the tile.
func Walkable(c Code) bool {
	switch c {
	case Grass, Dirt, Flower, Bush:
		return true
	default:
		return false
	}
}

// Minable reports whether the tile can be harvested directly.
// Dirt and water are base terrain and never change through mining.
func Minable(c Code) bool {
	return c.Valid() && c != Dirt && c != Water
}

// Buildable reports whether a structure may be placed over the tile.
func Buildable(c Code) bool {
	switch c {
	case Grass, Dirt, Flower, Bush:
		return true
	default:
		return false
	}
}

// Drop is the item granted when a tile is mined.
type Drop struct {
	Item   string
	Amount int
}

var drops = map[Code]Drop{
	Tree:      {Item: "wood", Amount: 3},
	Bush:      {Item: "wood", Amount: 1},
	Rock:      {Item: "stone", Amount: 3},
	StoneWall: {Item: "stone", Amount: 3},
	Fence:     {Item: "wood", Amount: 2},
	WoodFloor: {Item: "wood", Amount: 1},
	HouseWall: {Item: "stone", Amount: 2},
	Bonfire:   {Item: "wood", Amount: 2},
}

// Yield returns what mining the tile grants. Grass and flowers yield nothing.
func Yield(c Code) (Drop, bool) {
	d, ok := drops[c]
	return d, ok
}
