// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package feed

import (
	"math/rand"
	"sort"

	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/models"
)

// ContinueItem is an entry of the continue-watching rail.
type ContinueItem struct {
	Item     models.ContentItem `json:"item"`
	Progress float64            `json:"progress"`
}

// Layout is the feed arranged for presentation against one interaction snapshot.
type Layout struct {
	Shorts           []models.ContentItem `json:"shorts"`
	Longs            []models.ContentItem `json:"longs"`
	ContinueWatching []ContinueItem       `json:"continueWatching"`
	Affinity         []models.ContentItem `json:"affinity"`
}

type deriveOptions struct {
	hideInteracted bool
}

// DeriveOption adjusts Derive.
type DeriveOption func(*deriveOptions)

// HideInteracted controls whether liked and disliked items are left out of
// the short and long tracks. Default: true.
func HideInteracted(hide bool) DeriveOption {
	return func(o *deriveOptions) { o.hideInteracted = hide }
}

// Derive computes the rails and display tracks. The affinity order is fixed
// by shuffleSeed, so the same seed gives the same layout.
func Derive(f *Feed, snap *interaction.Snapshot, shuffleSeed int64, opts ...DeriveOption) Layout {
	o := deriveOptions{hideInteracted: true}
	for _, opt := range opts {
		opt(&o)
	}
	if snap == nil {
		snap = &interaction.Snapshot{}
	}

	return Layout{
		Shorts:           shortTrack(f, snap, o),
		Longs:            longTrack(f, snap, o),
		ContinueWatching: continueWatching(f, snap),
		Affinity:         affinity(f, snap, shuffleSeed),
	}
}

func hidden(id string, snap *interaction.Snapshot, o deriveOptions) bool {
	return o.hideInteracted && (snap.IsLiked(id) || snap.IsDisliked(id))
}

func shortTrack(f *Feed, snap *interaction.Snapshot, o deriveOptions) []models.ContentItem {
	out := []models.ContentItem{}
	for _, item := range f.Items() {
		if item.Kind == models.KindShort && !hidden(models.IdentityOf(item), snap, o) {
			out = append(out, item)
		}
	}
	return out
}

// longTrack keeps feed order except that watched items sink below unseen ones.
func longTrack(f *Feed, snap *interaction.Snapshot, o deriveOptions) []models.ContentItem {
	out := []models.ContentItem{}
	for _, item := range f.Items() {
		if item.Kind == models.KindLong && !hidden(models.IdentityOf(item), snap, o) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !snap.InHistory(models.IdentityOf(out[i])) && snap.InHistory(models.IdentityOf(out[j]))
	})
	return out
}

// continueWatching lists partially watched feed items in watch history order.
func continueWatching(f *Feed, snap *interaction.Snapshot) []ContinueItem {
	out := []ContinueItem{}
	for _, h := range snap.History() {
		if h.Progress <= interaction.ContinueMinProgress || h.Progress >= interaction.ContinueMaxProgress {
			continue
		}
		item, ok := f.Lookup(h.ID)
		if !ok {
			continue
		}
		out = append(out, ContinueItem{Item: item, Progress: h.Progress})
	}
	return out
}

// affinity lists un-rated feed items sharing a category with a liked feed item.
func affinity(f *Feed, snap *interaction.Snapshot, seed int64) []models.ContentItem {
	items := f.Items()

	categories := make(map[string]struct{})
	for _, item := range items {
		if snap.IsLiked(models.IdentityOf(item)) {
			categories[item.Category] = struct{}{}
		}
	}

	out := []models.ContentItem{}
	if len(categories) == 0 {
		return out
	}
	for _, item := range items {
		id := models.IdentityOf(item)
		if _, ok := categories[item.Category]; !ok || snap.IsLiked(id) || snap.IsDisliked(id) {
			continue
		}
		out = append(out, item)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // presentation shuffle, not security sensitive
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
