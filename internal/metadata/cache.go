package metadata

import (
	"sync"
	"time"
)

// Cache is an in-memory TTL cache for catalog results. Expired items are
// dropped lazily on access and when the cache is full; it runs no
// background goroutine.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]cacheItem
	ttl      time.Duration
	maxItems int
	now      func() time.Time
}

type cacheItem struct {
	value     any
	expiresAt time.Time
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	TTL      time.Duration
	MaxItems int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      time.Hour,
		MaxItems: 1000,
	}
}

// NewCache creates a new cache with the given configuration.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = 1000
	}

	return &Cache{
		items:    make(map[string]cacheItem),
		ttl:      cfg.TTL,
		maxItems: cfg.MaxItems,
		now:      time.Now,
	}
}

// Get retrieves an item from the cache.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(item.expiresAt) {
		c.Delete(key)
		return nil, false
	}

	return item.value, true
}

// Set stores an item with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores an item with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
}

// Len returns the number of items in the cache, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes expired items, then the 10% closest to expiry.
// Must be called with the lock held.
func (c *Cache) evictOldest() {
	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}

	if len(c.items) < c.maxItems {
		return
	}

	toRemove := max(c.maxItems/10, 1)
	for ; toRemove > 0 && len(c.items) > 0; toRemove-- {
		var oldestKey string
		var oldest time.Time
		for key, item := range c.items {
			if oldestKey == "" || item.expiresAt.Before(oldest) {
				oldestKey, oldest = key, item.expiresAt
			}
		}
		delete(c.items, oldestKey)
	}
}

// getTyped fetches key and asserts its type.
func getTyped[T any](c *Cache, key string) (T, bool) {
	var zero T
	val, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := val.(T)
	return v, ok
}
