package game

import "github.com/pixil98/hamlet/internal/tilemap"

// BuildItem is a placeable structure and what it costs.
type BuildItem struct {
	Name string
	Cost map[string]int
	Tile tilemap.Code
}

var buildItems = map[string]BuildItem{
	"stone_wall": {Name: "Stone Wall", Cost: map[string]int{"stone": 5}, Tile: tilemap.StoneWall},
	"wood_fence": {Name: "Wood Fence", Cost: map[string]int{"wood": 3}, Tile: tilemap.Fence},
	"wood_floor": {Name: "Wood Floor", Cost: map[string]int{"wood": 2}, Tile: tilemap.WoodFloor},
}

// LookupBuildItem returns the build item with the given id.
func LookupBuildItem(id string) (BuildItem, bool) {
	b, ok := buildItems[id]
	return b, ok
}
