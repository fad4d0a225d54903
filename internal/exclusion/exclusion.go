// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

// Package exclusion maintains the admin exclusion list: ids, alternate ids or
// media urls that must never appear in the feed. The list is append-only and
// persisted under storage.KeyAdminExclusions.
package exclusion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/metrics"
	"github.com/tomtom215/reelcast/internal/models"
	"github.com/tomtom215/reelcast/internal/storage"
)

// ErrEmptyEntry is returned when Add receives a blank entry.
var ErrEmptyEntry = errors.New("exclusion entry must not be empty")

// List is the persisted admin exclusion list.
type List struct {
	mu     sync.Mutex
	repo   storage.Repository
	logger zerolog.Logger

	entries []string
	index   map[string]struct{}
}

// Load reads the persisted list. An absent or malformed blob yields an empty list.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Load(ctx context.Context, repo storage.Repository, logger zerolog.Logger) (*List, error) {
	l := &List{
		repo:   repo,
		logger: logger.With().Str("component", "exclusion").Logger(),
		index:  make(map[string]struct{}),
	}

	blob, err := repo.Get(ctx, storage.KeyAdminExclusions)
	if errors.Is(err, storage.ErrNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read admin exclusions: %w", err)
	}

	var entries []string
	if err := json.Unmarshal(blob, &entries); err != nil {
		metrics.StateRepairs.WithLabelValues(storage.KeyAdminExclusions, "malformed").Inc()
		l.logger.Warn().Err(err).Msg("Persisted admin exclusions are malformed, starting empty")
		return l, nil
	}

	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := l.index[e]; ok {
			continue
		}
		l.index[e] = struct{}{}
		l.entries = append(l.entries, e)
	}

	l.logger.Info().Int("entries", len(l.entries)).Msg("Admin exclusions loaded")
	return l, nil
}

// Add appends entry and persists the list. It reports whether the entry was
// new; duplicates are a no-op and do not write.
func (l *List) Add(ctx context.Context, entry string) (bool, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return false, ErrEmptyEntry
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[entry]; ok {
		return false, nil
	}
	l.index[entry] = struct{}{}
	l.entries = append(l.entries, entry)

	blob, err := json.Marshal(l.entries)
	if err != nil {
		return true, fmt.Errorf("persist admin exclusions: %w", err)
	}
	if err := l.repo.Put(ctx, storage.KeyAdminExclusions, blob); err != nil {
		metrics.PersistenceErrors.WithLabelValues(storage.KeyAdminExclusions).Inc()
		l.logger.Error().Err(err).Str("entry", entry).Msg("Failed to persist admin exclusions")
		return true, fmt.Errorf("persist admin exclusions: %w", err)
	}

	l.logger.Info().Str("entry", entry).Msg("Admin exclusion added")
	return true, nil
}

// Snapshot returns an immutable copy of the list for one composition cycle.
func (l *List) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := make(map[string]struct{}, len(l.index))
	for e := range l.index {
		set[e] = struct{}{}
	}
	return &Snapshot{entries: append([]string(nil), l.entries...), set: set}
}

// Snapshot is a frozen exclusion list. The zero value excludes nothing.
type Snapshot struct {
	entries []string
	set     map[string]struct{}
}

// NewSnapshot builds a snapshot from literal entries.
func NewSnapshot(entries ...string) *Snapshot {
	s := &Snapshot{set: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		if _, ok := s.set[e]; ok || e == "" {
			continue
		}
		s.set[e] = struct{}{}
		s.entries = append(s.entries, e)
	}
	return s
}

// Contains reports whether value is excluded.
func (s *Snapshot) Contains(value string) bool {
	if s == nil || value == "" {
		return false
	}
	_, ok := s.set[value]
	return ok
}

// Excludes reports whether any identifier of item is on the list.
func (s *Snapshot) Excludes(item models.ContentItem) bool { //nolint:gocritic // ContentItem is passed by value throughout
	for _, id := range models.Identifiers(item) {
		if s.Contains(id) {
			return true
		}
	}
	return false
}

// Entries returns the entries in insertion order.
func (s *Snapshot) Entries() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
