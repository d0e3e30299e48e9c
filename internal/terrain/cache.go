package terrain

import (
	"sync"

	"github.com/banshee-data/greenreader/internal/heightfield"
	"github.com/banshee-data/greenreader/internal/monitoring"
)

// Cache holds loaded Fields keyed by hole id. Fields are immutable, so a
// cached Field can be handed to any number of callers.
type Cache struct {
	mu     sync.RWMutex
	fields map[string]*Field
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{fields: make(map[string]*Field)}
}

// Get returns the Field for id, calling load on a miss. Failed loads are
// not cached. Concurrent misses for the same id may both call load; the
// first stored Field wins and is returned to both.
func (c *Cache) Get(id string, load func() (*Field, error)) (*Field, error) {
	c.mu.RLock()
	f, ok := c.fields[id]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}

	f, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.fields[id]; ok {
		return existing, nil
	}
	c.fields[id] = f
	return f, nil
}

// Invalidate drops id so the next Get reloads it. Used after a rebuild.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.fields, id)
	c.mu.Unlock()
}

// Len returns the number of cached fields.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fields)
}

// Open loads hole id from store and wraps it in a Field.
func Open(store *heightfield.Store, id string) (*Field, error) {
	hf, err := store.Load(id)
	if err != nil {
		return nil, err
	}
	f, err := NewField(hf)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("terrain: opened %s (%dx%d, %d valid, mean %.3fft)", id, f.nx, f.nz, hf.ValidCount(), f.meanHeight)
	return f, nil
}

// Loader returns a load function for Cache.Get backed by store.
func Loader(store *heightfield.Store, id string) func() (*Field, error) {
	return func() (*Field, error) { return Open(store, id) }
}
