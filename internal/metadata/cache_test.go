package metadata

import (
	"fmt"
	"testing"
	"time"
)

type cacheClock struct{ now time.Time }

func (c *cacheClock) Now() time.Time { return c.now }

func newTestCache(cfg CacheConfig) (*Cache, *cacheClock) {
	clock := &cacheClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewCache(cfg)
	cache.now = clock.Now
	return cache, clock
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("key1", "value1")

	val, ok := cache.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != "value1" {
		t.Errorf("expected value1, got %v", val)
	}
}

func TestCache_GetMissing(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})

	if _, ok := cache.Get("nonexistent"); ok {
		t.Error("expected key to not exist")
	}
}

func TestCache_Expiration(t *testing.T) {
	cache, clock := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("key1", "value1")
	if _, ok := cache.Get("key1"); !ok {
		t.Error("expected key1 to exist immediately")
	}

	clock.now = clock.now.Add(2 * time.Minute)

	if _, ok := cache.Get("key1"); ok {
		t.Error("expected key1 to be expired")
	}
	if cache.Len() != 0 {
		t.Errorf("expected expired item to be dropped, len = %d", cache.Len())
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	cache, clock := newTestCache(CacheConfig{TTL: time.Hour, MaxItems: 100})

	cache.SetWithTTL("short", "v", time.Second)
	cache.Set("long", "v")

	clock.now = clock.now.Add(time.Minute)

	if _, ok := cache.Get("short"); ok {
		t.Error("expected short-lived item to be expired")
	}
	if _, ok := cache.Get("long"); !ok {
		t.Error("expected default TTL item to survive")
	}
}

func TestCache_Eviction(t *testing.T) {
	cache, clock := newTestCache(CacheConfig{TTL: time.Hour, MaxItems: 10})

	for i := 0; i < 10; i++ {
		cache.Set(fmt.Sprintf("key%d", i), i)
		clock.now = clock.now.Add(time.Second)
	}
	cache.Set("overflow", 10)

	if cache.Len() > 10 {
		t.Errorf("expected at most 10 items, got %d", cache.Len())
	}
	if _, ok := cache.Get("key0"); ok {
		t.Error("expected oldest item to be evicted")
	}
	if _, ok := cache.Get("overflow"); !ok {
		t.Error("expected newest item to be present")
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Hour, MaxItems: 2})

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("a", 3)

	if cache.Len() != 2 {
		t.Errorf("expected 2 items, got %d", cache.Len())
	}
	if v, _ := cache.Get("a"); v != 3 {
		t.Errorf("expected overwritten value 3, got %v", v)
	}
}

func TestCache_DeleteClear(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Delete("key1")

	if _, ok := cache.Get("key1"); ok {
		t.Error("expected key1 to be deleted")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d", cache.Len())
	}
}

func TestGetTyped(t *testing.T) {
	cache, _ := newTestCache(CacheConfig{TTL: time.Minute, MaxItems: 100})
	cache.Set("n", 42)

	if v, ok := getTyped[int](cache, "n"); !ok || v != 42 {
		t.Errorf("getTyped[int] = %v, %v", v, ok)
	}
	if _, ok := getTyped[string](cache, "n"); ok {
		t.Error("expected type mismatch to miss")
	}
}
