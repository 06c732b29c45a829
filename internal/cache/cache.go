package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores serialized analytics results keyed by string.
type Cache interface {
	// Get returns the cached value and true on a hit.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process Cache, safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string) (string, bool) { return "", false }

func (NopCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = NopCache{}
)
