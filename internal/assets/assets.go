// Package assets handles asset loading and caching.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Embedded texture paths.
const (
	PrimaryTexture   = "textures/tree.png"
	SecondaryTexture = "textures/bricks.png"
)

//go:embed textures
var embedded embed.FS

// Manager loads assets from layered file systems.
// Layers are searched in reverse order (last added = highest priority), with
// the embedded assets at the bottom.
type Manager struct {
	layers []fs.FS
	cache  *Cache
	mu     sync.RWMutex
}

// NewManager creates a manager serving the embedded assets.
func NewManager() *Manager {
	return &Manager{
		layers: []fs.FS{embedded},
		cache:  NewCache(),
	}
}

// AddFS adds a file system layer above the existing ones.
func (m *Manager) AddFS(fsys fs.FS) {
	m.mu.Lock()
	m.layers = append(m.layers, fsys)
	m.mu.Unlock()
	m.cache.Clear()
}

// AddDir adds a directory overriding embedded assets with the same path.
func (m *Manager) AddDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening asset dir %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset path %s is not a directory", path)
	}
	m.AddFS(os.DirFS(path))
	return nil
}

// Load loads a file from the layers.
func (m *Manager) Load(path string) ([]byte, error) {
	// Check cache first
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(m.layers[i], path)
		if err == nil {
			m.cache.Set(path, data)
			return data, nil
		}
	}

	return nil, fmt.Errorf("file not found: %s", path)
}

// Close drops all layers except the embedded one.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.layers = m.layers[:1]
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
