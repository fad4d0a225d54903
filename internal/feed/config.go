// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package feed

import (
	"fmt"
	"time"
)

// Config contains all configuration for the feed engine.
type Config struct {
	// HideInteracted omits liked and disliked items from the short and long
	// display tracks. The feed itself is never filtered by interactions.
	// Default: true.
	HideInteracted bool `json:"hide_interacted"`

	// CycleTimeout bounds one composition cycle, ranking included.
	// Default: 30s.
	CycleTimeout time.Duration `json:"cycle_timeout"`

	// SearchDefaultLimit is the result count when a search names none.
	// Default: 10.
	SearchDefaultLimit int `json:"search_default_limit"`

	// SearchMaxLimit caps the requested search result count.
	// Default: 100.
	SearchMaxLimit int `json:"search_max_limit"`

	// Seed seeds the fallback shuffle and per-cycle affinity seeds.
	// If zero, the seed is drawn from the clock at startup.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HideInteracted:     true,
		CycleTimeout:       30 * time.Second,
		SearchDefaultLimit: 10,
		SearchMaxLimit:     100,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.CycleTimeout <= 0 {
		return fmt.Errorf("feed.cycle_timeout must be positive, got %v", c.CycleTimeout)
	}
	if c.SearchDefaultLimit < 1 {
		return fmt.Errorf("feed.search_default_limit must be positive, got %d", c.SearchDefaultLimit)
	}
	if c.SearchMaxLimit < c.SearchDefaultLimit {
		return fmt.Errorf("feed.search_max_limit must be at least search_default_limit (%d), got %d",
			c.SearchDefaultLimit, c.SearchMaxLimit)
	}
	return nil
}
