package tilemap

import (
	"errors"
	"math"
)

var ErrOutOfBounds = errors.New("cell out of bounds")

// Grid is a fixed size two dimensional tile grid indexed as [y][x].
// Its dimensions never change once created.
type Grid struct {
	width  int
	height int
	cells  []Code
}

// NewGrid creates a width x height grid filled with fill.
func NewGrid(width, height int, fill Code) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Code, width*height),
	}
	for i := range g.cells {
		g.cells[i] = fill
	}
	return g
}

// FromRows builds a grid from row-major data. All rows must share a length.
func FromRows(rows [][]Code) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("grid must have at least one cell")
	}
	g := NewGrid(len(rows[0]), len(rows), Grass)
	for y, row := range rows {
		if len(row) != g.width {
			return nil, errors.New("grid rows must all be the same length")
		}
		copy(g.cells[y*g.width:], row)
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Get returns the tile at (x, y).
func (g *Grid) Get(x, y int) (Code, error) {
	if !g.InBounds(x, y) {
		return 0, ErrOutOfBounds
	}
	return g.cells[y*g.width+x], nil
}

// Set replaces the tile at (x, y). Setting a cell to the code it already
// holds is a no-op and reports changed=false.
func (g *Grid) Set(x, y int, c Code) (bool, error) {
	if !g.InBounds(x, y) {
		return false, ErrOutOfBounds
	}
	i := y*g.width + x
	if g.cells[i] == c {
		return false, nil
	}
	g.cells[i] = c
	return true, nil
}

// CellAt returns the cell containing the world position (px, py).
// ok is false for positions outside the grid, including NaN and infinities.
func (g *Grid) CellAt(px, py float64) (x, y int, ok bool) {
	if math.IsNaN(px) || math.IsNaN(py) || math.IsInf(px, 0) || math.IsInf(py, 0) {
		return 0, 0, false
	}
	fx := math.Floor(px / TileSize)
	fy := math.Floor(py / TileSize)
	if fx < 0 || fy < 0 || fx >= float64(g.width) || fy >= float64(g.height) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// CellCenter returns the world position of the centre of cell (x, y).
func CellCenter(x, y int) (float64, float64) {
	return float64(x)*TileSize + TileSize/2, float64(y)*TileSize + TileSize/2
}

// Rows returns a deep copy of the grid as row-major slices.
func (g *Grid) Rows() [][]Code {
	rows := make([][]Code, g.height)
	for y := range rows {
		row := make([]Code, g.width)
		copy(row, g.cells[y*g.width:(y+1)*g.width])
		rows[y] = row
	}
	return rows
}

// Count returns the number of cells holding c.
func (g *Grid) Count(c Code) int {
	n := 0
	for _, v := range g.cells {
		if v == c {
			n++
		}
	}
	return n
}
