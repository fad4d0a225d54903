// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache[V any](t *testing.T, ttl time.Duration, clock *fakeClock, opts ...Option[V]) *Cache[V] {
	t.Helper()
	opts = append(opts, func(c *Cache[V]) { c.now = clock.Now })
	c := New[V](ttl, opts...)
	t.Cleanup(c.Close)
	return c
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()
	c := newTestCache[string](t, time.Minute, newFakeClock())

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	c := newTestCache[int](t, time.Minute, clock)

	c.Set("k", 1)
	clock.Advance(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired early")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected k to be expired")
	}
	if stats := c.GetStats(); stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestCacheSlidingExpiration(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	c := newTestCache(t, time.Minute, clock, WithSlidingExpiration[int]())

	c.Set("k", 1)
	for i := 0; i < 5; i++ {
		clock.Advance(45 * time.Second)
		if _, ok := c.Get("k"); !ok {
			t.Fatalf("sliding entry expired after touch %d", i)
		}
	}

	clock.Advance(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("idle entry should expire")
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()
	c := newTestCache[string](t, time.Minute, newFakeClock())

	c.Set("key1", "value1")
	if !c.Delete("key1") {
		t.Error("Delete() of present key = false")
	}
	if c.Delete("key1") {
		t.Error("Delete() of absent key = true")
	}
	if _, ok := c.Get("key1"); ok {
		t.Error("Expected key1 to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	t.Parallel()
	c := newTestCache[int](t, time.Minute, newFakeClock())

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	stats := c.GetStats()
	if stats.Evictions != 3 || stats.TotalKeys != 0 {
		t.Errorf("stats = %+v, want 3 evictions and 0 keys", stats)
	}
}

func TestCacheEvictionCallback(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()

	var (
		mu      sync.Mutex
		evicted []string
	)
	c := newTestCache(t, time.Minute, clock, WithEvictionCallback(func(key string, _ int) {
		mu.Lock()
		evicted = append(evicted, key)
		mu.Unlock()
	}))

	c.Set("deleted", 1)
	c.Set("expired", 2)
	c.SetWithTTL("kept", 3, time.Hour)

	c.Delete("deleted")
	clock.Advance(2 * time.Minute)
	c.cleanup()

	mu.Lock()
	defer mu.Unlock()
	if len(evicted) != 2 {
		t.Fatalf("evicted = %v, want deleted and expired", evicted)
	}
	if _, ok := c.Get("kept"); !ok {
		t.Error("long-TTL entry should survive cleanup")
	}
}

func TestCacheStats(t *testing.T) {
	t.Parallel()
	c := newTestCache[string](t, time.Minute, newFakeClock())

	c.Set("key1", "value1")
	c.Get("key1")
	c.Get("key1")
	c.Get("missing")

	stats := c.GetStats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v", stats)
	}

	want := 2.0 / 3.0 * 100
	if rate := c.HitRate(); rate < want-0.01 || rate > want+0.01 {
		t.Errorf("HitRate() = %v, want %v", rate, want)
	}
}

func TestCacheHitRateZeroOperations(t *testing.T) {
	t.Parallel()
	c := newTestCache[string](t, time.Minute, newFakeClock())
	if rate := c.HitRate(); rate != 0 {
		t.Errorf("HitRate() = %v, want 0", rate)
	}
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	c := New[int](time.Minute, WithSlidingExpiration[int]())
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%10)
				c.Set(key, i)
				c.Get(key)
				if i%17 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 10 {
		t.Errorf("Len() = %d, want at most 10", c.Len())
	}
}

func TestCacheCloseIdempotent(t *testing.T) {
	t.Parallel()
	c := New[int](time.Minute, WithCleanupInterval[int](10*time.Millisecond))
	c.Close()
	c.Close()

	c.Set("still", 1)
	if _, ok := c.Get("still"); !ok {
		t.Error("cache should remain usable after Close")
	}
}

func TestCacheRangeSkipsExpired(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	c := newTestCache[int](t, time.Minute, clock)

	c.SetWithTTL("old", 1, time.Second)
	c.Set("a", 2)
	c.Set("b", 3)
	clock.Advance(2 * time.Second)

	seen := make(map[string]int)
	c.Range(func(key string, v int) bool {
		seen[key] = v
		return true
	})
	if len(seen) != 2 || seen["a"] != 2 || seen["b"] != 3 {
		t.Errorf("Range saw %v, want a and b only", seen)
	}

	calls := 0
	c.Range(func(string, int) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("Range kept going after false: %d calls", calls)
	}

	if stats := c.GetStats(); stats.Hits != 0 {
		t.Errorf("Range counted %d hits", stats.Hits)
	}
}
