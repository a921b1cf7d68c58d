package format

import "sync"

// MemoryCache is a ProgramCache bounded to a fixed number of entries. When
// full, the oldest entry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]any
	order   []string
}

// NewMemoryCache returns a cache holding up to limit programs; limit <= 0
// means 256.
func NewMemoryCache(limit int) *MemoryCache {
	if limit <= 0 {
		limit = 256
	}
	return &MemoryCache{limit: limit, entries: map[string]any{}}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.limit {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = value
}

// Len returns the number of cached programs.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
