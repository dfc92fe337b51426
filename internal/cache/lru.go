package cache

import (
	"sync"
	"time"
)

// LRUCache is a small TTL cache with least-recently-used eviction. It
// holds the computed range summaries; capacity is tens of entries, so
// eviction scans the map instead of maintaining a list.
type LRUCache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	maxSize int
	ttl     time.Duration

	// now is swapped out by tests to drive expiry without sleeping.
	now func() time.Time
}

type entry[T any] struct {
	value    T
	expires  time.Time
	lastUsed time.Time
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		entries: make(map[string]*entry[T]),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if it exists and has not
// expired. A hit refreshes the entry's recency, not its TTL.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	t := c.now()
	if t.After(e.expires) {
		delete(c.entries, key)
		return zero, false
	}
	e.lastUsed = t
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	c.entries[key] = &entry[T]{
		value:    value,
		expires:  t.Add(c.ttl),
		lastUsed: t,
	}

	if len(c.entries) > c.maxSize {
		c.evictOldest()
	}
}

// evictOldest removes the entry with the oldest lastUsed. Caller holds
// the lock.
func (c *LRUCache[T]) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, e := range c.entries {
		if first || e.lastUsed.Before(oldest) {
			oldestKey, oldest = key, e.lastUsed
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// Delete removes key if present.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry. Called when a write invalidates all cached
// summaries at once.
func (c *LRUCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[T])
}

// Size returns the number of entries, expired ones included.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CleanExpired drops expired entries, returning how many were removed.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	removed := 0
	for key, e := range c.entries {
		if t.After(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
