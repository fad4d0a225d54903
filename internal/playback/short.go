// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package playback

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/models"
)

var (
	// ErrIndexOutOfRange is returned for navigation outside the item list.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEmptyList is returned when a short session has nothing to play.
	ErrEmptyList = errors.New("item list is empty")
)

// State is the player state of a short-form session.
type State string

const (
	StatePlaying   State = "playing"
	StateAdvancing State = "advancing"
	StateRepeating State = "repeating"
)

// DefaultLikedWeight is the number of extra pool entries a liked item gets.
const DefaultLikedWeight = 3

// ShortPolicy picks the next short after one finishes. Advancing draws from
// a pool holding every other index once, plus extra copies of liked ones.
// It is not safe for concurrent use.
type ShortPolicy struct {
	items       []models.ContentItem
	index       int
	state       State
	autoAdvance bool
	likedWeight int
	rng         *rand.Rand
}

// NewShortPolicy starts playback at the item with identity startID, or at
// the first item when startID is not in the list.
func NewShortPolicy(items []models.ContentItem, startID string, autoAdvance bool, likedWeight int, rng *rand.Rand) (*ShortPolicy, error) {
	if len(items) == 0 {
		return nil, ErrEmptyList
	}
	if likedWeight < 0 {
		likedWeight = 0
	}

	p := &ShortPolicy{
		items:       append([]models.ContentItem(nil), items...),
		state:       StatePlaying,
		autoAdvance: autoAdvance,
		likedWeight: likedWeight,
		rng:         rng,
	}
	if i := indexOf(p.items, startID); i >= 0 {
		p.index = i
	}
	return p, nil
}

// Finished handles the end of the current short and returns the index that
// plays next. The current index is re-validated against the list first.
func (p *ShortPolicy) Finished(snap *interaction.Snapshot) int {
	p.clamp()

	if !p.autoAdvance || len(p.items) <= 1 {
		p.state = StateRepeating
		return p.index
	}

	p.state = StateAdvancing
	pool := WeightedPool(p.items, p.index, snap, p.likedWeight)
	p.index = pool[p.rng.Intn(len(pool))]
	p.state = StatePlaying
	return p.index
}

// Navigate jumps to index.
func (p *ShortPolicy) Navigate(index int) error {
	if index < 0 || index >= len(p.items) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, len(p.items))
	}
	p.index = index
	p.state = StatePlaying
	return nil
}

// NavigateTo jumps to the item with identity id.
func (p *ShortPolicy) NavigateTo(id string) error {
	i := indexOf(p.items, id)
	if i < 0 {
		return fmt.Errorf("%w: %q not in list", ErrIndexOutOfRange, id)
	}
	return p.Navigate(i)
}

// SetItems replaces the list. Playback stays on the current item when it is
// still present; otherwise the index is clamped.
func (p *ShortPolicy) SetItems(items []models.ContentItem) error {
	if len(items) == 0 {
		return ErrEmptyList
	}

	currentID := ""
	if p.index < len(p.items) {
		currentID = models.IdentityOf(p.items[p.index])
	}

	p.items = append([]models.ContentItem(nil), items...)
	if i := indexOf(p.items, currentID); i >= 0 {
		p.index = i
		return nil
	}
	p.clamp()
	return nil
}

// SetAutoAdvance toggles auto-advance.
func (p *ShortPolicy) SetAutoAdvance(on bool) { p.autoAdvance = on }

// AutoAdvance reports whether auto-advance is on.
func (p *ShortPolicy) AutoAdvance() bool { return p.autoAdvance }

// Index returns the current index.
func (p *ShortPolicy) Index() int { return p.index }

// State returns the player state.
func (p *ShortPolicy) State() State { return p.state }

// Current returns the item at the current index.
func (p *ShortPolicy) Current() models.ContentItem {
	p.clamp()
	return p.items[p.index]
}

// Len returns the list length.
func (p *ShortPolicy) Len() int { return len(p.items) }

func (p *ShortPolicy) clamp() {
	if p.index >= len(p.items) {
		p.index = len(p.items) - 1
	}
	if p.index < 0 {
		p.index = 0
	}
}

// WeightedPool lists every index except current once, and each liked one
// weight more times. It is empty when items has fewer than two entries.
func WeightedPool(items []models.ContentItem, current int, snap *interaction.Snapshot, weight int) []int {
	pool := make([]int, 0, len(items))
	for i, item := range items {
		if i == current {
			continue
		}
		pool = append(pool, i)
		if snap != nil && snap.IsLiked(models.IdentityOf(item)) {
			for w := 0; w < weight; w++ {
				pool = append(pool, i)
			}
		}
	}
	return pool
}

func indexOf(items []models.ContentItem, id string) int {
	if id == "" {
		return -1
	}
	for i, item := range items {
		if models.IdentityOf(item) == id {
			return i
		}
	}
	return -1
}
