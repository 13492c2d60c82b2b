package cache

import (
	"context"
	"sync"
)

// MemoryCache is a thread-safe in-memory image cache. Entries never expire:
// a recorded failure stays recorded for the life of the process.
type MemoryCache struct {
	data  map[string]*string
	mutex sync.RWMutex
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*string),
	}
}

// Lookup returns the cached reference for key; hit is false on a miss
func (c *MemoryCache) Lookup(ctx context.Context, key string) (*string, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	ref, exists := c.data[key]
	if !exists {
		return nil, false, nil
	}
	return copyRef(ref), true, nil
}

// Store records ref (nil for "no image") under key, replacing any previous entry
func (c *MemoryCache) Store(ctx context.Context, key string, ref *string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = copyRef(ref)
	return nil
}

// Len returns the number of entries, negative ones included
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func copyRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := *ref
	return &v
}
