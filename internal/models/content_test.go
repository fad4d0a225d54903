// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestIdentityOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item ContentItem
		want string
	}{
		{"id wins", ContentItem{ID: "a", AlternateID: "b", MediaURL: "c"}, "a"},
		{"alternate id fallback", ContentItem{AlternateID: "b", MediaURL: "c"}, "b"},
		{"media url last resort", ContentItem{MediaURL: "c"}, "c"},
		{"no identity", ContentItem{Title: "untitled"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IdentityOf(tt.item); got != tt.want {
				t.Errorf("IdentityOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentifiers(t *testing.T) {
	t.Parallel()

	got := Identifiers(ContentItem{ID: "a", MediaURL: "c"})
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Identifiers() = %v, want [a c]", got)
	}
}

func TestSameItem(t *testing.T) {
	t.Parallel()

	a := ContentItem{MediaURL: "https://cdn/x.mp4"}
	b := ContentItem{MediaURL: "https://cdn/x.mp4", Title: "other title"}
	if !SameItem(a, b) {
		t.Error("items with the same media url should be the same item")
	}
	if SameItem(ContentItem{}, ContentItem{}) {
		t.Error("items without identity must never match")
	}
}

func TestContentItemJSON(t *testing.T) {
	t.Parallel()

	payload := `{"id":"v1","public_id":"p1","video_url":"u1","type":"short","title":"T","category":"mystery"}`

	var item ContentItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if item.Kind != KindShort {
		t.Errorf("Kind = %v, want short", item.Kind)
	}
	if item.AlternateID != "p1" || item.MediaURL != "u1" {
		t.Errorf("identifiers not decoded: %+v", item)
	}

	var unknown ContentItem
	if err := json.Unmarshal([]byte(`{"id":"v2","type":"reel"}`), &unknown); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if unknown.Kind != KindLong {
		t.Errorf("unknown type decoded as %v, want long", unknown.Kind)
	}
}
