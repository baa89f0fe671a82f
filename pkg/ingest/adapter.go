package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Adapter loads one auxiliary provider source (NPPES, Plan-Net, ...) as a
// Sheet restricted to the join keys already present in the base directory.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "nppes").
	ID() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns where the source can be downloaded from.
	DefaultURL() string
	// License returns the license identifier for this source.
	License() string
	// Load reads the source at path, keeping the rows whose key column holds
	// a value in keys. A nil set keeps every row. An empty path yields an
	// empty sheet.
	Load(ctx context.Context, path, key string, keys map[string]struct{}) (*Sheet, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown auxiliary source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// keyColumn finds the join key column, ignoring case.
func keyColumn(header []string, key string) int {
	for i, h := range header {
		if h == key {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(h, key) {
			return i
		}
	}
	return -1
}

// filterRows keeps the rows whose key is in keys. A nil set, or a sheet
// without the key column, is left as is; the merge reports the latter.
func filterRows(s *Sheet, key string, keys map[string]struct{}) {
	if keys == nil {
		return
	}
	idx := keyColumn(s.Header, key)
	if idx < 0 {
		return
	}
	kept := s.Rows[:0]
	for _, row := range s.Rows {
		if row[idx] == nil {
			continue
		}
		if _, ok := keys[strings.TrimSpace(*row[idx])]; ok {
			kept = append(kept, row)
		}
	}
	s.Rows = kept
}
