package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/hamlet/internal/game"
	"github.com/pixil98/hamlet/internal/storage"
	"github.com/pixil98/hamlet/internal/tilemap"
)

type WorldConfig struct {
	Seed   int64 `json:"seed"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width != 0 && c.Width < tilemap.MinSize {
		el.Add(fmt.Errorf("world: width must be 0 or at least %d", tilemap.MinSize))
	}
	if c.Height != 0 && c.Height < tilemap.MinSize {
		el.Add(fmt.Errorf("world: height must be 0 or at least %d", tilemap.MinSize))
	}

	return el.Err()
}

func (c *WorldConfig) generateGrid() *tilemap.Grid {
	opts := []tilemap.GeneratorOpt{}
	if c.Seed != 0 {
		opts = append(opts, tilemap.WithSeed(c.Seed))
	}
	if c.Width != 0 || c.Height != 0 {
		opts = append(opts, tilemap.WithSize(
			orDefault(c.Width, tilemap.DefaultWidth),
			orDefault(c.Height, tilemap.DefaultHeight),
		))
	}
	return tilemap.NewGenerator(opts...).Generate()
}

func orDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// AssetsConfig points at optional JSON asset directories. Any left empty
// falls back to the built-in village content.
type AssetsConfig struct {
	Nodes         AssetConfig[*game.NodeSpec]         `json:"nodes"`
	Interactables AssetConfig[*game.InteractableSpec] `json:"interactables"`
	Quests        AssetConfig[*game.QuestSpec]        `json:"quests"`
}

func (c *AssetsConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Nodes.Validate("nodes"))
	el.Add(c.Interactables.Validate("interactables"))
	el.Add(c.Quests.Validate("quests"))
	return el.Err()
}

func (c *AssetsConfig) buildCatalog() (*game.Catalog, error) {
	cat, err := game.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("building default catalog: %w", err)
	}

	if c.Nodes.Path != "" {
		cat.Nodes, err = c.Nodes.BuildFileStore()
		if err != nil {
			return nil, fmt.Errorf("creating node store: %w", err)
		}
	}
	if c.Interactables.Path != "" {
		cat.Interactables, err = c.Interactables.BuildFileStore()
		if err != nil {
			return nil, fmt.Errorf("creating interactable store: %w", err)
		}
	}
	if c.Quests.Path != "" {
		cat.Quests, err = c.Quests.BuildFileStore()
		if err != nil {
			return nil, fmt.Errorf("creating quest store: %w", err)
		}
	}

	return cat, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return nil
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("assets %s: invalid path %q: %w", name, c.Path, err)
	}
	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (storage.Storer[T], error) {
	st, err := storage.NewFileStore[T](c.Path)
	if err != nil {
		return nil, err
	}
	return st, nil
}
