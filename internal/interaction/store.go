// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/metrics"
	"github.com/tomtom215/reelcast/internal/storage"
)

var (
	// ErrInvalidProgress is returned when a progress ratio is outside [0,1] or NaN.
	ErrInvalidProgress = errors.New("progress ratio must be within [0,1]")

	// ErrEmptyID is returned when a mutator receives an empty id.
	ErrEmptyID = errors.New("interaction id must not be empty")
)

// Store is the live, persisted interaction state.
type Store struct {
	mu     sync.Mutex
	repo   storage.Repository
	logger zerolog.Logger

	liked    *idSet
	disliked *idSet
	saved    *idSet

	history  []HistoryEntry
	position map[string]int // id -> index into history
}

// newStore creates an empty store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newStore(repo storage.Repository, logger zerolog.Logger) *Store {
	return &Store{
		repo:     repo,
		logger:   logger.With().Str("component", "interaction").Logger(),
		liked:    newIDSet(),
		disliked: newIDSet(),
		saved:    newIDSet(),
		position: make(map[string]int),
	}
}

// Load reads the persisted interaction state from repo.
//
// An absent or malformed blob yields the zero state. Corrupt entries are
// repaired and logged. Only a storage read failure is returned as an error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Load(ctx context.Context, repo storage.Repository, logger zerolog.Logger) (*Store, error) {
	s := newStore(repo, logger)

	blob, err := repo.Get(ctx, storage.KeyInteractionState)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Info().Msg("No persisted interaction state, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read interaction state: %w", err)
	}

	var p persistedState
	if err := json.Unmarshal(blob, &p); err != nil {
		metrics.StateRepairs.WithLabelValues(storage.KeyInteractionState, "malformed").Inc()
		s.logger.Warn().Err(err).Msg("Persisted interaction state is malformed, starting empty")
		return s, nil
	}

	s.restoreFrom(&p)
	return s, nil
}

// restoreFrom fills the empty store from p, repairing corrupt entries.
func (s *Store) restoreFrom(p *persistedState) {
	for _, id := range p.DislikedIDs {
		if id != "" {
			s.disliked.add(id)
		}
	}
	for _, id := range p.LikedIDs {
		if id == "" {
			continue
		}
		if s.disliked.has(id) {
			metrics.StateRepairs.WithLabelValues(storage.KeyInteractionState, "liked_and_disliked").Inc()
			s.logger.Warn().Str("id", id).Msg("Id persisted as both liked and disliked, keeping dislike")
			continue
		}
		s.liked.add(id)
	}
	for _, id := range p.SavedIDs {
		if id != "" {
			s.saved.add(id)
		}
	}
	for _, e := range p.WatchHistory {
		if e.ID == "" || !validProgress(e.Progress) {
			metrics.StateRepairs.WithLabelValues(storage.KeyInteractionState, "bad_progress").Inc()
			s.logger.Warn().Str("id", e.ID).Float64("progress", e.Progress).Msg("Dropping invalid watch history entry")
			continue
		}
		if i, ok := s.position[e.ID]; ok {
			if e.Progress > s.history[i].Progress {
				s.history[i].Progress = e.Progress
			}
			continue
		}
		s.position[e.ID] = len(s.history)
		s.history = append(s.history, e)
	}

	s.logger.Info().
		Int("liked", len(s.liked.order)).
		Int("disliked", len(s.disliked.order)).
		Int("saved", len(s.saved.order)).
		Int("history", len(s.history)).
		Msg("Interaction state loaded")
}

// Like marks id as liked and clears any dislike.
func (s *Store) Like(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.liked.has(id) {
		return nil
	}
	s.disliked.remove(id)
	s.liked.add(id)
	return s.commitLocked(ctx, "like")
}

// Dislike marks id as disliked and clears any like.
func (s *Store) Dislike(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disliked.has(id) {
		return nil
	}
	s.liked.remove(id)
	s.disliked.add(id)
	return s.commitLocked(ctx, "dislike")
}

// Save bookmarks id.
func (s *Store) Save(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved.add(id) {
		return nil
	}
	return s.commitLocked(ctx, "save")
}

// Unsave removes the bookmark for id.
func (s *Store) Unsave(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved.remove(id) {
		return nil
	}
	return s.commitLocked(ctx, "unsave")
}

// Restore removes id from the disliked set only.
func (s *Store) Restore(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.disliked.remove(id) {
		return nil
	}
	return s.commitLocked(ctx, "restore")
}

// RecordProgress records watch progress for id. The stored value only grows.
// Callers clamp player positions before calling; out-of-range ratios are rejected.
func (s *Store) RecordProgress(ctx context.Context, id string, ratio float64) error {
	if id == "" {
		return ErrEmptyID
	}
	if !validProgress(ratio) {
		return fmt.Errorf("%w: got %v", ErrInvalidProgress, ratio)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.position[id]; ok {
		if ratio <= s.history[i].Progress {
			return nil
		}
		s.history[i].Progress = ratio
	} else {
		s.position[id] = len(s.history)
		s.history = append(s.history, HistoryEntry{ID: id, Progress: ratio})
	}
	return s.commitLocked(ctx, "progress")
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *Snapshot {
	progress := make(map[string]float64, len(s.history))
	for _, e := range s.history {
		progress[e.ID] = e.Progress
	}

	history := make([]HistoryEntry, len(s.history))
	copy(history, s.history)

	return &Snapshot{
		liked:         s.liked.frozen(),
		disliked:      s.disliked.frozen(),
		saved:         s.saved.frozen(),
		progress:      progress,
		likedOrder:    s.liked.list(),
		dislikedOrder: s.disliked.list(),
		savedOrder:    s.saved.list(),
		history:       history,
	}
}

// commitLocked persists the current state. The in-memory change stays
// applied when the write fails. Caller must hold s.mu.
func (s *Store) commitLocked(ctx context.Context, operation string) error {
	metrics.InteractionMutations.WithLabelValues(operation).Inc()

	blob, err := json.Marshal(s.snapshotLocked().persisted())
	if err != nil {
		return fmt.Errorf("persist interaction state: %w", err)
	}

	if err := s.repo.Put(ctx, storage.KeyInteractionState, blob); err != nil {
		metrics.PersistenceErrors.WithLabelValues(storage.KeyInteractionState).Inc()
		s.logger.Error().Err(err).Str("operation", operation).Msg("Failed to persist interaction state")
		return fmt.Errorf("persist interaction state: %w", err)
	}
	return nil
}
