// Package overrides holds per-listing corrections for records whose upstream
// data is known to be wrong or incomplete. The table is configuration data
// loaded from a JSON file, keyed by (source, id), so it can be updated
// without touching the normalizer.
package overrides

import (
	"encoding/json"
	"fmt"
	"os"

	"inmofeed/internal/models"
)

// Override carries the correctable fields. Zero values mean "no override".
type Override struct {
	Bedrooms  int    `json:"bedrooms,omitempty"`
	Bathrooms int    `json:"bathrooms,omitempty"`
	Area      int    `json:"area,omitempty"`
	Floor     int    `json:"floor,omitempty"`
	Address   string `json:"address,omitempty"`
}

type key struct {
	source models.SourceID
	id     string
}

// Store is an immutable (source, id) -> Override lookup table.
type Store struct {
	m map[key]Override
}

// Empty returns a store with no overrides.
func Empty() *Store {
	return &Store{m: map[key]Override{}}
}

// Load reads a JSON file shaped as
//
//	{"woocommerce": {"77": {"bedrooms": 3}}, "mongodb": {...}}
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("overrides: read %s: %w", path, err)
	}
	var file map[models.SourceID]map[string]Override
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("overrides: parse %s: %w", path, err)
	}
	s := Empty()
	for src, byID := range file {
		if !src.Valid() {
			return nil, fmt.Errorf("overrides: unknown source %q in %s", src, path)
		}
		for id, ov := range byID {
			s.m[key{source: src, id: id}] = ov
		}
	}
	return s, nil
}

// Lookup returns the override for (source, id), if any.
func (s *Store) Lookup(source models.SourceID, id string) (Override, bool) {
	ov, ok := s.m[key{source: source, id: id}]
	return ov, ok
}

// Len reports how many overrides are loaded.
func (s *Store) Len() int { return len(s.m) }
