package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hazyhaar/provider-directory/pkg/provider"
)

// LoadFunc reads the current catalog.
type LoadFunc func(ctx context.Context) (*provider.Table, error)

// Registry holds the live directory and swaps it on reload.
type Registry struct {
	mu       sync.RWMutex
	dir      *Directory
	loadedAt time.Time
	load     LoadFunc
}

// NewRegistry creates an empty registry backed by load.
func NewRegistry(load LoadFunc) *Registry {
	return &Registry{dir: New(&provider.Table{}), load: load}
}

// Load reads the catalog and replaces the live directory. On error the
// previous directory stays in place.
func (r *Registry) Load(ctx context.Context) error {
	t, err := r.load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	d := New(t)

	r.mu.Lock()
	r.dir = d
	r.loadedAt = time.Now()
	r.mu.Unlock()
	return nil
}

// Reload reloads the catalog (hot reload).
func (r *Registry) Reload(ctx context.Context) error {
	return r.Load(ctx)
}

// Directory returns the live snapshot. It stays valid after a reload.
func (r *Registry) Directory() *Directory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dir
}

// Info describes the live directory.
type Info struct {
	Providers      int       `json:"providers"`
	HasCoordinates bool      `json:"has_coordinates"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// Info returns metadata about the live directory.
func (r *Registry) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Info{
		Providers:      r.dir.Len(),
		HasCoordinates: r.dir.HasCoordinates(),
		LoadedAt:       r.loadedAt,
	}
}
