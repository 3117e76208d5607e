package pricing

import (
	"context"
	"sync"
	"time"
)

// PriceCache caches price list pages to reduce API calls
type PriceCache interface {
	Get(ctx context.Context, key string) ([]PriceItem, bool, error)
	Set(ctx context.Context, key string, items []PriceItem) error
}

// MemoryCache is an in-process PriceCache with a fixed TTL
type MemoryCache struct {
	data  map[string]*cacheEntry
	ttl   time.Duration
	mutex sync.RWMutex
	now   func() time.Time
}

type cacheEntry struct {
	items     []PriceItem
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]PriceItem, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return nil, false, nil
	}

	if c.now().After(entry.expiresAt) {
		// Expired
		return nil, false, nil
	}

	return entry.items, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, items []PriceItem) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &cacheEntry{
		items:     items,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]*cacheEntry)
}
