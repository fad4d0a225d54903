// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package models

import (
	"strings"

	"github.com/goccy/go-json"
)

// Kind is the presentation track a content item belongs to.
type Kind int

const (
	// KindLong is horizontal long-form content. Unknown kinds decode as long.
	KindLong Kind = iota

	// KindShort is vertical short-form content played in the swipe player.
	KindShort
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindShort:
		return "short"
	default:
		return "long"
	}
}

// ParseKind converts a wire name to a Kind.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), "short") {
		return KindShort
	}
	return KindLong
}

// MarshalJSON encodes the kind as its wire name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a wire name. Anything other than "short" is long.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = ParseKind(s)
	return nil
}

// ContentItem is one playable asset as delivered by the catalog.
// Items are immutable for the duration of a composition cycle.
type ContentItem struct {
	// ID is the stable identifier. May be empty for provider-only assets.
	ID string `json:"id,omitempty"`

	// AlternateID is the provider-assigned public id.
	AlternateID string `json:"public_id,omitempty"`

	// MediaURL is the playable url, used as identifier of last resort.
	MediaURL string `json:"video_url,omitempty"`

	// Kind selects the short or long presentation track.
	Kind Kind `json:"type"`

	Title     string `json:"title"`
	Category  string `json:"category,omitempty"`
	PosterURL string `json:"poster_url,omitempty"`
}

// IdentityOf resolves the identity of an item: ID, then AlternateID, then MediaURL.
// Every set-membership check in the engine goes through this function.
func IdentityOf(item ContentItem) string {
	if item.ID != "" {
		return item.ID
	}
	if item.AlternateID != "" {
		return item.AlternateID
	}
	return item.MediaURL
}

// Identifiers returns every non-empty identifier of an item.
// Admin exclusions match against any of them.
func Identifiers(item ContentItem) []string {
	ids := make([]string, 0, 3)
	for _, id := range []string{item.ID, item.AlternateID, item.MediaURL} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// SameItem reports whether two items resolve to the same identity.
func SameItem(a, b ContentItem) bool {
	id := IdentityOf(a)
	return id != "" && id == IdentityOf(b)
}
