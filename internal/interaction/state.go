// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package interaction

import (
	"math"

	"github.com/goccy/go-json"
)

// Progress bounds for the continue-watching rail.
const (
	ContinueMinProgress = 0.05
	ContinueMaxProgress = 0.95
)

// HistoryEntry is one watch history record.
type HistoryEntry struct {
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
}

// persistedState is the stored JSON shape.
type persistedState struct {
	LikedIDs     []string       `json:"likedIds"`
	DislikedIDs  []string       `json:"dislikedIds"`
	SavedIDs     []string       `json:"savedIds"`
	WatchHistory []HistoryEntry `json:"watchHistory"`
}

// validProgress reports whether ratio is a usable progress value.
func validProgress(ratio float64) bool {
	return !math.IsNaN(ratio) && ratio >= 0 && ratio <= 1
}

// idSet is an insertion-ordered set of ids.
type idSet struct {
	order []string
	index map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{index: make(map[string]struct{})}
}

func (s *idSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// add reports whether id was newly added.
func (s *idSet) add(id string) bool {
	if s.has(id) {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// remove reports whether id was present.
func (s *idSet) remove(id string) bool {
	if !s.has(id) {
		return false
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *idSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *idSet) frozen() map[string]struct{} {
	out := make(map[string]struct{}, len(s.index))
	for id := range s.index {
		out[id] = struct{}{}
	}
	return out
}

// Snapshot is an immutable copy of the interaction state.
// The zero value is an empty state.
type Snapshot struct {
	liked    map[string]struct{}
	disliked map[string]struct{}
	saved    map[string]struct{}
	progress map[string]float64

	likedOrder    []string
	dislikedOrder []string
	savedOrder    []string
	history       []HistoryEntry
}

// IsLiked reports whether id is liked.
func (s *Snapshot) IsLiked(id string) bool {
	_, ok := s.liked[id]
	return ok
}

// IsDisliked reports whether id is disliked.
func (s *Snapshot) IsDisliked(id string) bool {
	_, ok := s.disliked[id]
	return ok
}

// IsSaved reports whether id is saved.
func (s *Snapshot) IsSaved(id string) bool {
	_, ok := s.saved[id]
	return ok
}

// Progress returns the recorded progress for id and whether any exists.
func (s *Snapshot) Progress(id string) (float64, bool) {
	p, ok := s.progress[id]
	return p, ok
}

// InHistory reports whether id has a watch history entry.
func (s *Snapshot) InHistory(id string) bool {
	_, ok := s.progress[id]
	return ok
}

// History returns the watch history in first-watched order.
func (s *Snapshot) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// LikedIDs returns liked ids in the order they were liked.
func (s *Snapshot) LikedIDs() []string { return append([]string(nil), s.likedOrder...) }

// DislikedIDs returns disliked ids in the order they were disliked.
func (s *Snapshot) DislikedIDs() []string { return append([]string(nil), s.dislikedOrder...) }

// SavedIDs returns saved ids in the order they were saved.
func (s *Snapshot) SavedIDs() []string { return append([]string(nil), s.savedOrder...) }

// MarshalJSON encodes the snapshot in the persisted shape.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.persisted())
}

func (s *Snapshot) persisted() persistedState {
	p := persistedState{
		LikedIDs:     s.LikedIDs(),
		DislikedIDs:  s.DislikedIDs(),
		SavedIDs:     s.SavedIDs(),
		WatchHistory: s.History(),
	}
	// Encode empty collections as [] rather than null.
	if p.LikedIDs == nil {
		p.LikedIDs = []string{}
	}
	if p.DislikedIDs == nil {
		p.DislikedIDs = []string{}
	}
	if p.SavedIDs == nil {
		p.SavedIDs = []string{}
	}
	if p.WatchHistory == nil {
		p.WatchHistory = []HistoryEntry{}
	}
	return p
}
