// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package feed

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/models"
)

// CollectionName names a per-viewer item collection.
type CollectionName string

const (
	CollectionLiked  CollectionName = "liked"
	CollectionSaved  CollectionName = "saved"
	CollectionHidden CollectionName = "hidden"
)

// ParseCollection validates a collection name.
func ParseCollection(s string) (CollectionName, error) {
	switch c := CollectionName(strings.ToLower(s)); c {
	case CollectionLiked, CollectionSaved, CollectionHidden:
		return c, nil
	default:
		return "", fmt.Errorf("unknown collection %q", s)
	}
}

// Search returns up to limit feed items whose title contains query,
// ignoring case, in feed order. An empty query matches nothing.
func Search(f *Feed, query string, limit int) []models.ContentItem {
	out := []models.ContentItem{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return out
	}

	for _, item := range f.Items() {
		if strings.Contains(strings.ToLower(item.Title), q) {
			out = append(out, item)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Collection returns the feed items in the named interaction set, in feed
// order. Hidden is the disliked set.
func Collection(f *Feed, snap *interaction.Snapshot, name CollectionName) []models.ContentItem {
	var member func(string) bool
	switch name {
	case CollectionLiked:
		member = snap.IsLiked
	case CollectionSaved:
		member = snap.IsSaved
	case CollectionHidden:
		member = snap.IsDisliked
	default:
		return []models.ContentItem{}
	}

	out := []models.ContentItem{}
	for _, item := range f.Items() {
		if member(models.IdentityOf(item)) {
			out = append(out, item)
		}
	}
	return out
}

// Stats are the display counters shown next to an item.
type Stats struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}

// DisplayStats derives stable pseudo counters from the item's media url, or
// its identity when it has none. Items without either get zero counters.
//
//nolint:gocritic // ContentItem is passed by value throughout
func DisplayStats(item models.ContentItem) Stats {
	seed := item.MediaURL
	if seed == "" {
		seed = models.IdentityOf(item)
	}
	if seed == "" {
		return Stats{}
	}

	h := stringHash(seed)
	views := abs64(int64(h%10000)) + 500
	likes := abs64(int64(math.Floor(float64(views)*0.15 + float64(h%100))))
	return Stats{Views: views, Likes: likes}
}

// stringHash is the 31-multiplier rolling hash over UTF-16 code units with
// 32-bit wraparound. Clients compute the same value.
func stringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(u)
	}
	return h
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
