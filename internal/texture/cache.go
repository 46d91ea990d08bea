package texture

import (
	"image"
	"sync"

	"hl-mdl-renderer/internal/mdl"
)

// Resolver resolves a model texture index to a decoded image.
type Resolver interface {
	Resolve(index int) *image.NRGBA
}

// Cache is a concurrency-safe decoded-texture cache for one model.
type Cache struct {
	mu    sync.RWMutex
	items map[int]*cacheEntry
	model *mdl.Model
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a texture cache over m's textures.
func NewCache(m *mdl.Model) *Cache {
	return &Cache{
		items: make(map[int]*cacheEntry),
		model: m,
	}
}

// Resolve decodes and caches a texture by index. Returns nil if the index is
// out of range or the texture failed to decode.
func (c *Cache) Resolve(index int) *image.NRGBA {
	img, _ := c.Get(index)
	return img
}

// Get is Resolve with the decode error.
func (c *Cache) Get(index int) (*image.NRGBA, error) {
	if index < 0 || index >= len(c.model.Textures) {
		return nil, nil
	}

	c.mu.RLock()
	if entry, exists := c.items[index]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	img, err := Decode(c.model.Data(), c.model.Textures[index])

	// Another goroutine may have decoded it meanwhile.
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[index]; exists {
		return entry.img, entry.err
	}
	c.items[index] = &cacheEntry{img: img, err: err}
	return img, err
}

// All decodes every texture of the model in order.
func (c *Cache) All() ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, len(c.model.Textures))
	for i := range out {
		img, err := c.Get(i)
		if err != nil {
			return nil, err
		}
		out[i] = img
	}
	return out, nil
}
