// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package cache provides a thread-safe, generic in-memory cache with TTL support.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Per-entry time-to-live with lazy expiration on Get
  - Optional sliding expiration, where every hit extends the entry
  - A background sweep that stops on Close
  - Eviction callbacks for gauges and resource cleanup

# Use Cases

The playback session registry keeps one entry per player. Sessions use
sliding expiration so an idle player is forgotten after the configured TTL
while an active one lives indefinitely.

# Statistics

GetStats reports hits, misses, evictions and the current key count. HitRate
returns hits as a percentage of lookups.

# Thread Safety

All methods are safe for concurrent use. Eviction callbacks run without the
cache lock held and may call back into the cache.
*/
package cache
