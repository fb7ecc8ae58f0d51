package storage

import "fmt"

// MemoryStore is a Storer with no backing files. It holds the built-in
// village content used when no asset directory is configured.
type MemoryStore[T ValidatingSpec] struct {
	records map[string]T
}

// NewMemoryStore validates every record as it would be validated on load
// from disk.
func NewMemoryStore[T ValidatingSpec](records map[string]T) (*MemoryStore[T], error) {
	s := &MemoryStore[T]{records: make(map[string]T, len(records))}
	for _, id := range sortedKeys(records) {
		asset := &Asset[T]{Version: CurrentVersion, Identifier: Identifier(id), Spec: records[id]}
		if err := asset.Validate(); err != nil {
			return nil, fmt.Errorf("validating %s: %w", id, err)
		}
		s.records[id] = records[id]
	}
	return s, nil
}

func (s *MemoryStore[T]) Get(id string) T {
	return s.records[id]
}

func (s *MemoryStore[T]) GetAll() map[string]T {
	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}

func (s *MemoryStore[T]) Keys() []string {
	return sortedKeys(s.records)
}
