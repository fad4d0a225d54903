// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package cache

import (
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

type entry[V any] struct {
	data      V
	ttl       time.Duration
	expiresAt time.Time
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithSlidingExpiration extends an entry's lifetime by its TTL on every hit.
func WithSlidingExpiration[V any]() Option[V] {
	return func(c *Cache[V]) { c.sliding = true }
}

// WithCleanupInterval sets the sweep interval for expired entries.
func WithCleanupInterval[V any](d time.Duration) Option[V] {
	return func(c *Cache[V]) {
		if d > 0 {
			c.cleanupInterval = d
		}
	}
}

// WithEvictionCallback registers fn to run after an entry expires or is
// deleted. fn runs without the cache lock held.
func WithEvictionCallback[V any](fn func(key string, value V)) Option[V] {
	return func(c *Cache[V]) { c.onEvict = fn }
}

// Cache provides a thread-safe in-memory cache with TTL support.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration

	sliding         bool
	cleanupInterval time.Duration
	onEvict         func(key string, value V)

	statsMu sync.RWMutex
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// New creates a cache whose entries expire ttl after they are set.
// A background goroutine sweeps expired entries until Close is called.
//
// Example:
//
//	sessions := cache.New[*Session](30*time.Minute, cache.WithSlidingExpiration[*Session]())
//	defer sessions.Close()
//	sessions.Set(id, s)
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries:         make(map[string]entry[V]),
		ttl:             ttl,
		cleanupInterval: DefaultCleanupInterval,
		stop:            make(chan struct{}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stats.LastCleanup = c.now()

	go c.cleanupLoop()

	return c
}

// Get retrieves a value. Expired entries are removed and count as misses.
// With sliding expiration a hit pushes the expiry forward.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	now := c.now()

	c.mu.Lock()
	e, exists := c.entries[key]
	if !exists {
		c.mu.Unlock()
		c.recordMiss()
		return zero, false
	}

	if now.After(e.expiresAt) {
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEvictions(1)
		c.evicted(key, e.data)
		return zero, false
	}

	if c.sliding {
		e.expiresAt = now.Add(e.ttl)
		c.entries[key] = e
	}
	c.mu.Unlock()

	c.recordHit()
	return e.data, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{data: value, ttl: ttl, expiresAt: c.now().Add(ttl)}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = n
	c.statsMu.Unlock()
}

// Delete removes key and reports whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	e, exists := c.entries[key]
	if exists {
		delete(c.entries, key)
	}
	n := int64(len(c.entries))
	c.mu.Unlock()

	if !exists {
		return false
	}

	c.statsMu.Lock()
	c.stats.Evictions++
	c.stats.TotalKeys = n
	c.statsMu.Unlock()

	c.evicted(key, e.data)
	return true
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	old := c.entries
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += int64(len(old))
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()

	for key, e := range old {
		c.evicted(key, e.data)
	}
}

// Range calls fn for every live entry until fn returns false. Entries are
// collected under the lock and fn runs without it, so fn may call back into
// the cache. Range does not count as a hit or extend sliding expiry.
func (c *Cache[V]) Range(fn func(key string, value V) bool) {
	now := c.now()

	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	values := make([]V, 0, len(c.entries))
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			continue
		}
		keys = append(keys, key)
		values = append(values, e.data)
	}
	c.mu.RUnlock()

	for i, key := range keys {
		if !fn(key, values[i]) {
			return
		}
	}
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of current cache performance statistics.
func (c *Cache[V]) GetStats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background sweep. The cache stays usable.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanupLoop periodically removes expired entries
func (c *Cache[V]) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries
func (c *Cache[V]) cleanup() {
	now := c.now()
	expired := make(map[string]V)

	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			expired[key] = e.data
		}
	}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += int64(len(expired))
	c.stats.TotalKeys = n
	c.stats.LastCleanup = now
	c.statsMu.Unlock()

	for key, v := range expired {
		c.evicted(key, v)
	}
}

func (c *Cache[V]) evicted(key string, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

func (c *Cache[V]) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache[V]) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache[V]) recordEvictions(n int64) {
	c.statsMu.Lock()
	c.stats.Evictions += n
	c.statsMu.Unlock()
}
