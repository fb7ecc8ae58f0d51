package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// Storer is a read-only set of specs keyed by asset id.
type Storer[T ValidatingSpec] interface {
	Get(id string) T
	GetAll() map[string]T
	Keys() []string
}

// FileStore holds every asset found under a directory tree. A file may
// contain one asset object or an array of them.
type FileStore[T ValidatingSpec] struct {
	path    string
	records map[string]T
	sources map[string]string
}

func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	s := &FileStore[T]{
		path:    path,
		records: map[string]T{},
		sources: map[string]string{},
	}

	err := filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}
		return s.loadFile(p)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("asset store loaded", "path", path, "count", len(s.records))
	return s, nil
}

func (s *FileStore[T]) loadFile(path string) error {
	name := s.relative(path)

	assets, err := readAssets[T](path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}

	for i, asset := range assets {
		err := asset.Validate()
		if err != nil {
			if len(assets) > 1 {
				return fmt.Errorf("validating %s[%d]: %w", name, i, err)
			}
			return fmt.Errorf("validating %s: %w", name, err)
		}

		id := asset.Id().String()
		if prev, ok := s.sources[id]; ok {
			return fmt.Errorf("duplicate id %s in %s (first defined in %s)", id, name, prev)
		}
		s.records[id] = asset.Spec
		s.sources[id] = name
	}
	return nil
}

func (s *FileStore[T]) relative(path string) string {
	rel, err := filepath.Rel(s.path, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}

func readAssets[T ValidatingSpec](path string) ([]*Asset[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var assets []*Asset[T]
		if err := json.Unmarshal(trimmed, &assets); err != nil {
			return nil, fmt.Errorf("unmarshalling asset list: %w", err)
		}
		if len(assets) == 0 {
			return nil, fmt.Errorf("asset list is empty")
		}
		return assets, nil
	}

	asset := &Asset[T]{}
	if err := json.Unmarshal(trimmed, asset); err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}
	return []*Asset[T]{asset}, nil
}

// Get returns the asset stored under id, or the zero value.
func (s *FileStore[T]) Get(id string) T {
	return s.records[id]
}

func (s *FileStore[T]) GetAll() map[string]T {
	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}

// Keys returns the stored ids in ascending order.
func (s *FileStore[T]) Keys() []string {
	return sortedKeys(s.records)
}

// Source names the file, relative to the store root, an id was loaded from.
func (s *FileStore[T]) Source(id string) (string, bool) {
	src, ok := s.sources[id]
	return src, ok
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
