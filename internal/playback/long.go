// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package playback

import (
	"math"

	"github.com/tomtom215/reelcast/internal/models"
)

// LongPolicy chains long-form items: when one finishes, the first suggestion
// that is a different item plays next, otherwise the current one restarts.
// It is not safe for concurrent use.
type LongPolicy struct {
	current     models.ContentItem
	position    float64
	autoAdvance bool
}

// NewLongPolicy starts playback of item at position 0.
//
//nolint:gocritic // ContentItem is passed by value throughout
func NewLongPolicy(item models.ContentItem, autoAdvance bool) *LongPolicy {
	return &LongPolicy{current: item, autoAdvance: autoAdvance}
}

// Finished handles the end of the current item and reports whether it
// advanced to a new item. Either way the position is reset to 0.
func (p *LongPolicy) Finished(suggestions []models.ContentItem) bool {
	p.position = 0
	if !p.autoAdvance {
		return false
	}

	for _, s := range suggestions {
		if !models.SameItem(s, p.current) && models.IdentityOf(s) != "" {
			p.current = s
			return true
		}
	}
	return false
}

// Select replaces the current item and rewinds.
//
//nolint:gocritic // ContentItem is passed by value throughout
func (p *LongPolicy) Select(item models.ContentItem) {
	p.current = item
	p.position = 0
}

// SetPosition records the playback position in seconds. Negative and NaN
// values are treated as 0.
func (p *LongPolicy) SetPosition(seconds float64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	p.position = seconds
}

// SetAutoAdvance toggles auto-advance.
func (p *LongPolicy) SetAutoAdvance(on bool) { p.autoAdvance = on }

// AutoAdvance reports whether auto-advance is on.
func (p *LongPolicy) AutoAdvance() bool { return p.autoAdvance }

// Current returns the playing item.
func (p *LongPolicy) Current() models.ContentItem { return p.current }

// Position returns the playback position in seconds.
func (p *LongPolicy) Position() float64 { return p.position }
