// Package cache provides a thread-safe, size-bounded cache with per-entry
// expiration.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
	seq     uint64
}

// TTLCache is a thread-safe cache whose entries expire ttl after they were
// stored. When maxEntries is positive, storing a new key into a full cache
// evicts the oldest entry.
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]entry[V]
	ttl        time.Duration
	maxEntries int
	seq        uint64
	now        func() time.Time
}

// New creates a cache. A ttl of zero disables caching: Set is a no-op.
func New[K comparable, V any](ttl time.Duration, maxEntries int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data:       make(map[K]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Enabled reports whether the cache stores anything.
func (c *TTLCache[K, V]) Enabled() bool { return c != nil && c.ttl > 0 }

// Get returns the value for key if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key.
func (c *TTLCache[K, V]) Set(key K, value V) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.pruneLocked(now)
		if len(c.data) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}
	c.seq++
	c.data[key] = entry[V]{value: value, expires: now.Add(c.ttl), seq: c.seq}
}

// pruneLocked drops expired entries. MUST be called with the write lock held.
func (c *TTLCache[K, V]) pruneLocked(now time.Time) {
	for k, e := range c.data {
		if !now.Before(e.expires) {
			delete(c.data, k)
		}
	}
}

func (c *TTLCache[K, V]) evictOldestLocked() {
	var oldest K
	var oldestSeq uint64
	found := false
	for k, e := range c.data {
		if !found || e.seq < oldestSeq {
			oldest, oldestSeq, found = k, e.seq, true
		}
	}
	if found {
		delete(c.data, oldest)
	}
}

// Invalidate clears all cached data.
func (c *TTLCache[K, V]) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[K]entry[V])
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
