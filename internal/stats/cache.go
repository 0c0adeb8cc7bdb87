package stats

import (
	"sync"
	"time"
)

// Cache is a lightweight in-memory TTL cache for provider responses. Safe
// for concurrent use; expired entries are swept by a background janitor.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry[V]
	stop    chan struct{}
	once    sync.Once
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCache creates a cache with the given TTL (15 minutes when ttl <= 0)
// and starts its janitor.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	c := &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]cacheEntry[V]),
		stop:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Stop halts the janitor. Idempotent.
func (c *Cache[V]) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[V]) janitor() {
	interval := c.ttl / 2
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
