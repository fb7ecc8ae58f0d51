package tilemap

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 80

	// MinSize is the smallest width or height the generator lays a village on.
	MinSize = 32
)

// Generator produces the initial tile grid. The same seed always yields the
// same grid, and the village plaza containing the spawn cell is always
// walkable.
type Generator struct {
	width  int
	height int
	seed   int64

	villageX int
	villageY int
}

type GeneratorOpt func(*Generator)

// WithSize sets the grid dimensions. Values below MinSize are raised to it.
func WithSize(width, height int) GeneratorOpt {
	return func(g *Generator) {
		g.width = max(width, MinSize)
		g.height = max(height, MinSize)
	}
}

// WithSeed fixes the random seed.
func WithSeed(seed int64) GeneratorOpt {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithVillage sets the top-left cell of the village plaza.
func WithVillage(x, y int) GeneratorOpt {
	return func(g *Generator) {
		g.villageX = x
		g.villageY = y
	}
}

func NewGenerator(opts ...GeneratorOpt) *Generator {
	g := &Generator{
		width:    DefaultWidth,
		height:   DefaultHeight,
		seed:     1,
		villageX: 15,
		villageY: 15,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

const (
	plazaWidth  = 12
	plazaHeight = 10

	forestScale   = 6.0
	forestDensity = 0.1
)

// Generate builds a new grid.
func (g *Generator) Generate() *Grid {
	rng := rand.New(rand.NewSource(g.seed))
	grid := NewGrid(g.width, g.height, Grass)

	g.border(grid)
	g.lakes(grid, rng)
	g.roads(grid, rng)
	g.village(grid)
	g.forest(grid)

	area := g.width * g.height
	scale := func(n int) int { return n * area / (DefaultWidth * DefaultHeight) }
	g.scatter(grid, rng, Tree, scale(80), 3)
	g.scatter(grid, rng, Rock, scale(40), 3)
	g.scatter(grid, rng, Flower, scale(60), 2)
	g.scatter(grid, rng, Bush, scale(50), 2)

	return grid
}

func (g *Generator) border(grid *Grid) {
	for x := 0; x < g.width; x++ {
		grid.Set(x, 0, Tree)
		grid.Set(x, g.height-1, Tree)
	}
	for y := 0; y < g.height; y++ {
		grid.Set(0, y, Tree)
		grid.Set(g.width-1, y, Tree)
	}
}

func (g *Generator) lakes(grid *Grid, rng *rand.Rand) {
	count := 3 + rng.Intn(3)
	for i := 0; i < count; i++ {
		cx := 8 + rng.Intn(g.width-20)
		cy := 8 + rng.Intn(g.height-20)
		radius := 4 + rng.Intn(5)

		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				x, y := cx+dx, cy+dy
				if x <= 1 || y <= 1 || x >= g.width-2 || y >= g.height-2 {
					continue
				}
				if math.Hypot(float64(dx), float64(dy)) < float64(radius) {
					grid.Set(x, y, Water)
				}
			}
		}
	}
}

func (g *Generator) roads(grid *Grid, rng *rand.Rand) {
	span := func(n int) int { return n/4 + rng.Intn(max(n/4, 1)) }

	ry := span(g.height)
	for x := 1; x < g.width-1; x++ {
		for _, y := range []int{ry, ry + 1} {
			if c, _ := grid.Get(x, y); c != Water {
				grid.Set(x, y, Dirt)
			}
		}
	}

	rx := span(g.width)
	for y := 1; y < g.height-1; y++ {
		for _, x := range []int{rx, rx + 1} {
			if c, _ := grid.Get(x, y); c != Water {
				grid.Set(x, y, Dirt)
			}
		}
	}
}

// village lays the spawn plaza. It overwrites whatever is underneath so the
// spawn area is never water.
func (g *Generator) village(grid *Grid) {
	vx, vy := g.villageX, g.villageY
	for y := vy; y < vy+plazaHeight; y++ {
		for x := vx; x < vx+plazaWidth; x++ {
			grid.Set(x, y, Dirt)
		}
	}

	ring := func(x, y int) {
		if c, err := grid.Get(x, y); err == nil && c == Grass {
			grid.Set(x, y, Flower)
		}
	}
	for x := vx - 1; x <= vx+plazaWidth; x++ {
		ring(x, vy-1)
		ring(x, vy+plazaHeight)
	}
	for y := vy - 1; y <= vy+plazaHeight; y++ {
		ring(vx-1, y)
		ring(vx+plazaWidth, y)
	}

	grid.Set(vx+plazaWidth/2, vy+plazaHeight/2, Bonfire)
}

// forest fills the south-east woods. Simplex noise groups the trees into
// thickets with clearings between them.
func (g *Generator) forest(grid *Grid) {
	noise := opensimplex.New(g.seed)
	for y := g.height * 5 / 8; y < g.height-2; y++ {
		for x := g.width * 5 / 8; x < g.width-2; x++ {
			if noise.Eval2(float64(x)/forestScale, float64(y)/forestScale) < forestDensity {
				continue
			}
			if c, _ := grid.Get(x, y); c == Grass {
				grid.Set(x, y, Tree)
			}
		}
	}
}

// scatter places count tiles of c on grass cells at least margin cells away
// from the edge.
func (g *Generator) scatter(grid *Grid, rng *rand.Rand, c Code, count, margin int) {
	w := g.width - 2*margin
	h := g.height - 2*margin
	for i := 0; i < count; i++ {
		x := margin + rng.Intn(w)
		y := margin + rng.Intn(h)
		if cur, _ := grid.Get(x, y); cur == Grass {
			grid.Set(x, y, c)
		}
	}
}
