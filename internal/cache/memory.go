package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps tile responses of the current run in process.
// Entries expire after the layer's TTL unless Set is given its own.
type MemoryCache struct {
	entries *gocache.Cache
	ttl     time.Duration
}

// NewMemoryCache creates a memory layer whose entries live for ttl
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: gocache.New(ttl, cleanupInterval),
		ttl:     ttl,
	}
}

// TTL returns the lifetime applied when Set is called with a zero ttl
func (c *MemoryCache) TTL() time.Duration {
	return c.ttl
}

// Len returns the number of stored responses, expired ones included
// until the next cleanup
func (c *MemoryCache) Len() int {
	return c.entries.ItemCount()
}

// Get returns a copy of the stored response body
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.entries.Get(key)
	if !found {
		return nil, false
	}
	body, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), body...), true
}

// Set stores a copy of value. A zero ttl uses the layer's TTL.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	c.entries.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete removes a response
func (c *MemoryCache) Delete(key string) error {
	c.entries.Delete(key)
	return nil
}

// Clear drops every response
func (c *MemoryCache) Clear() error {
	c.entries.Flush()
	return nil
}
