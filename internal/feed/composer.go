// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/exclusion"
	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/metrics"
	"github.com/tomtom215/reelcast/internal/models"
	"github.com/tomtom215/reelcast/internal/ranking"
)

// Feed is an ordered, duplicate-free sequence of content items.
type Feed struct {
	items []models.ContentItem
	index map[string]int
}

func newFeed(items []models.ContentItem) *Feed {
	f := &Feed{items: items, index: make(map[string]int, len(items))}
	for i, item := range items {
		f.index[models.IdentityOf(item)] = i
	}
	// Secondary identifiers never shadow another item's identity.
	for i, item := range items {
		for _, id := range models.Identifiers(item) {
			if _, taken := f.index[id]; !taken {
				f.index[id] = i
			}
		}
	}
	return f
}

// Len returns the number of items.
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	return len(f.items)
}

// Items returns a copy of the items in feed order.
func (f *Feed) Items() []models.ContentItem {
	if f == nil {
		return nil
	}
	return append([]models.ContentItem(nil), f.items...)
}

// Lookup finds an item by any of its identifiers.
func (f *Feed) Lookup(id string) (models.ContentItem, bool) {
	if f == nil {
		return models.ContentItem{}, false
	}
	i, ok := f.index[id]
	if !ok {
		return models.ContentItem{}, false
	}
	return f.items[i], true
}

// Canonical returns the identity of the item known by id, or id itself
// when no item carries it.
func (f *Feed) Canonical(id string) string {
	if item, ok := f.Lookup(id); ok {
		return models.IdentityOf(item)
	}
	return id
}

// IDs returns the identities in feed order.
func (f *Feed) IDs() []string {
	if f == nil {
		return nil
	}
	ids := make([]string, len(f.items))
	for i, item := range f.items {
		ids[i] = models.IdentityOf(item)
	}
	return ids
}

// Inputs are the snapshots one composition reads.
type Inputs struct {
	Catalog      []models.ContentItem
	Exclusions   *exclusion.Snapshot
	Interactions *interaction.Snapshot
}

// Outcome describes how the feed order was obtained.
type Outcome struct {
	Ranked         bool                `json:"ranked"`
	Fallback       bool                `json:"fallback"`
	FallbackReason ranking.FailureKind `json:"fallbackReason,omitempty"`
}

// Composer turns a catalog into a feed. Apart from the ranking call it is a
// pure function of its inputs and its random source.
type Composer struct {
	ranker ranking.Ranker
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewComposer creates a composer. rng drives the fallback shuffle.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewComposer(ranker ranking.Ranker, rng *rand.Rand, logger zerolog.Logger) *Composer {
	return &Composer{
		ranker: ranker,
		rng:    rng,
		logger: logger.With().Str("component", "composer").Logger(),
	}
}

// Compose filters the catalog, orders it by the ranking signal and returns
// the feed. The result is always a permutation of the filtered catalog.
func (c *Composer) Compose(ctx context.Context, in Inputs) (*Feed, Outcome) {
	filtered := c.filter(in.Catalog, in.Exclusions)

	ids := make([]string, len(filtered))
	for i, item := range filtered {
		ids[i] = models.IdentityOf(item)
	}

	start := time.Now()
	result := c.ranker.Rank(ctx, filtered, in.Interactions)
	metrics.RecordRanking(string(result.Kind()), time.Since(start))

	order := result.OrElse(func() []string {
		c.rngMu.Lock()
		defer c.rngMu.Unlock()
		return ranking.Fallback(ids, c.rng)
	})

	outcome := Outcome{Ranked: result.OK()}
	if !result.OK() {
		outcome.Fallback = true
		outcome.FallbackReason = result.Kind()
		c.logger.Warn().Err(result.Err()).Str("kind", string(result.Kind())).Msg("Ranking failed, using shuffle fallback")
	}

	return newFeed(applyOrder(filtered, order)), outcome
}

// filter drops duplicate, unidentifiable and excluded catalog items while
// keeping catalog order. The first occurrence of an identity wins.
func (c *Composer) filter(catalog []models.ContentItem, excl *exclusion.Snapshot) []models.ContentItem {
	seen := make(map[string]struct{}, len(catalog))
	out := make([]models.ContentItem, 0, len(catalog))

	for _, item := range catalog {
		id := models.IdentityOf(item)
		if id == "" {
			metrics.CatalogItemsDropped.WithLabelValues("no_identity").Inc()
			c.logger.Debug().Str("title", item.Title).Msg("Dropping catalog item without identity")
			continue
		}
		if _, dup := seen[id]; dup {
			metrics.CatalogItemsDropped.WithLabelValues("duplicate").Inc()
			c.logger.Debug().Str("id", id).Msg("Dropping duplicate catalog item")
			continue
		}
		seen[id] = struct{}{}

		if excl.Excludes(item) {
			metrics.CatalogItemsDropped.WithLabelValues("excluded").Inc()
			continue
		}
		out = append(out, item)
	}
	return out
}

// applyOrder places items named by order first, in that order, then the
// remaining items in their original order. Unknown and repeated ids in order
// are ignored.
func applyOrder(items []models.ContentItem, order []string) []models.ContentItem {
	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[models.IdentityOf(item)] = i
	}

	placed := make([]bool, len(items))
	out := make([]models.ContentItem, 0, len(items))

	for _, id := range order {
		i, ok := byID[id]
		if !ok || placed[i] {
			continue
		}
		placed[i] = true
		out = append(out, items[i])
	}
	for i, item := range items {
		if !placed[i] {
			out = append(out, item)
		}
	}
	return out
}
