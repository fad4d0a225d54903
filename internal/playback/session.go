// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package playback

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/cache"
	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/metrics"
	"github.com/tomtom215/reelcast/internal/models"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("playback session not found")

	// ErrWrongKind is returned when an operation does not apply to the
	// session's kind, such as Select on a short session.
	ErrWrongKind = errors.New("operation not supported for session kind")

	// ErrInvalidDuration is returned by Progress for a non-positive duration.
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Decision names what a transition did.
type Decision string

const (
	DecisionAdvance Decision = "advance"
	DecisionRepeat  Decision = "repeat"
	DecisionRestart Decision = "restart"
	DecisionManual  Decision = "manual"
)

// Config controls the session registry.
type Config struct {
	// IdleTTL is how long a session lives without activity.
	IdleTTL time.Duration

	// LikedWeight is the number of extra pool entries for liked shorts.
	LikedWeight int

	// Seed seeds the generator that seeds each session's rng. Zero uses the clock.
	Seed int64
}

// DefaultConfig returns registry defaults.
func DefaultConfig() Config {
	return Config{
		IdleTTL:     30 * time.Minute,
		LikedWeight: DefaultLikedWeight,
	}
}

// Session is one server-held player.
type Session struct {
	mu sync.Mutex

	id        string
	kind      models.Kind
	short     *ShortPolicy
	long      *LongPolicy
	createdAt time.Time
	lastSeen  time.Time
	decision  Decision
}

// View is the externally visible state of a session.
type View struct {
	ID          string             `json:"id"`
	Kind        models.Kind        `json:"kind"`
	State       State              `json:"state"`
	AutoAdvance bool               `json:"autoAdvance"`
	Current     models.ContentItem `json:"current"`
	Index       int                `json:"index"`
	Length      int                `json:"length"`
	Position    float64            `json:"position"`
	Decision    Decision           `json:"decision,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	LastSeen    time.Time          `json:"lastSeen"`
}

// ProgressReport is the watch progress derived from a position update.
type ProgressReport struct {
	ItemID string  `json:"itemId"`
	Ratio  float64 `json:"ratio"`
}

func (s *Session) viewLocked() View {
	v := View{
		ID:        s.id,
		Kind:      s.kind,
		Decision:  s.decision,
		CreatedAt: s.createdAt,
		LastSeen:  s.lastSeen,
	}
	if s.short != nil {
		v.State = s.short.State()
		v.AutoAdvance = s.short.AutoAdvance()
		v.Current = s.short.Current()
		v.Index = s.short.Index()
		v.Length = s.short.Len()
		return v
	}
	v.State = StatePlaying
	v.AutoAdvance = s.long.AutoAdvance()
	v.Current = s.long.Current()
	v.Length = 1
	v.Position = s.long.Position()
	return v
}

// Registry holds live playback sessions. Idle sessions expire after the
// configured TTL; every operation on a session refreshes it.
type Registry struct {
	sessions    *cache.Cache[*Session]
	likedWeight int
	logger      zerolog.Logger

	seedMu sync.Mutex
	seeds  *rand.Rand
	now    func() time.Time
}

// NewRegistry creates a session registry.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRegistry(cfg Config, logger zerolog.Logger) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultConfig().IdleTTL
	}
	if cfg.LikedWeight < 0 {
		cfg.LikedWeight = 0
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &Registry{
		likedWeight: cfg.LikedWeight,
		logger:      logger.With().Str("component", "playback").Logger(),
		seeds:       rand.New(rand.NewSource(seed)), //nolint:gosec // playback order is not security sensitive
		now:         time.Now,
	}
	r.sessions = cache.New[*Session](cfg.IdleTTL,
		cache.WithSlidingExpiration[*Session](),
		cache.WithEvictionCallback(func(id string, _ *Session) {
			metrics.PlaybackSessionsActive.Dec()
			r.logger.Debug().Str("session_id", id).Msg("Playback session ended")
		}),
	)
	return r
}

func (r *Registry) newRand() *rand.Rand {
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	return rand.New(rand.NewSource(r.seeds.Int63())) //nolint:gosec // playback order is not security sensitive
}

func (r *Registry) add(s *Session) View {
	now := r.now()
	s.id = uuid.New().String()
	s.createdAt = now
	s.lastSeen = now

	r.sessions.Set(s.id, s)
	metrics.PlaybackSessionsActive.Inc()
	r.logger.Debug().
		Str("session_id", s.id).
		Str("kind", s.kind.String()).
		Msg("Playback session started")

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// StartShort opens a short-form session over items, positioned on startID.
func (r *Registry) StartShort(items []models.ContentItem, startID string, autoAdvance bool) (View, error) {
	p, err := NewShortPolicy(items, startID, autoAdvance, r.likedWeight, r.newRand())
	if err != nil {
		return View{}, err
	}
	return r.add(&Session{kind: models.KindShort, short: p}), nil
}

// StartLong opens a long-form session on item.
//
//nolint:gocritic // ContentItem is passed by value throughout
func (r *Registry) StartLong(item models.ContentItem, autoAdvance bool) View {
	return r.add(&Session{kind: models.KindLong, long: NewLongPolicy(item, autoAdvance)})
}

// with runs fn on the locked session and returns its view.
func (r *Registry) with(id string, fn func(s *Session) error) (View, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s); err != nil {
		return View{}, err
	}
	s.lastSeen = r.now()
	return s.viewLocked(), nil
}

// Get returns the session's current view.
func (r *Registry) Get(id string) (View, error) {
	return r.with(id, func(*Session) error { return nil })
}

// Finished applies the continuation policy after the current item ends.
// snap weights the short pool; suggestions feed the long chain.
func (r *Registry) Finished(id string, snap *interaction.Snapshot, suggestions []models.ContentItem) (View, error) {
	return r.with(id, func(s *Session) error {
		if s.short != nil {
			s.short.Finished(snap)
			if s.short.State() == StateRepeating {
				s.decision = DecisionRepeat
			} else {
				s.decision = DecisionAdvance
			}
		} else {
			if s.long.Finished(suggestions) {
				s.decision = DecisionAdvance
			} else {
				s.decision = DecisionRestart
			}
		}
		metrics.PlaybackTransitions.WithLabelValues(s.kind.String(), string(s.decision)).Inc()
		return nil
	})
}

// Navigate moves a short session to index.
func (r *Registry) Navigate(id string, index int) (View, error) {
	return r.with(id, func(s *Session) error {
		if s.short == nil {
			return ErrWrongKind
		}
		if err := s.short.Navigate(index); err != nil {
			return err
		}
		r.manual(s)
		return nil
	})
}

// NavigateTo moves a short session to the item with identity itemID.
func (r *Registry) NavigateTo(id, itemID string) (View, error) {
	return r.with(id, func(s *Session) error {
		if s.short == nil {
			return ErrWrongKind
		}
		if err := s.short.NavigateTo(itemID); err != nil {
			return err
		}
		r.manual(s)
		return nil
	})
}

// Select replaces the item of a long session.
//
//nolint:gocritic // ContentItem is passed by value throughout
func (r *Registry) Select(id string, item models.ContentItem) (View, error) {
	return r.with(id, func(s *Session) error {
		if s.long == nil {
			return ErrWrongKind
		}
		s.long.Select(item)
		r.manual(s)
		return nil
	})
}

func (r *Registry) manual(s *Session) {
	s.decision = DecisionManual
	metrics.PlaybackTransitions.WithLabelValues(s.kind.String(), string(DecisionManual)).Inc()
}

// Progress records a position update and returns the watch ratio for the
// current item, clamped into [0,1].
func (r *Registry) Progress(id string, position, duration float64) (View, ProgressReport, error) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return View{}, ProgressReport{}, ErrInvalidDuration
	}

	var report ProgressReport
	view, err := r.with(id, func(s *Session) error {
		var current models.ContentItem
		if s.short != nil {
			current = s.short.Current()
		} else {
			s.long.SetPosition(position)
			current = s.long.Current()
		}
		report = ProgressReport{ItemID: models.IdentityOf(current), Ratio: ClampRatio(position / duration)}
		return nil
	})
	return view, report, err
}

// SetAutoAdvance toggles auto-advance on a session.
func (r *Registry) SetAutoAdvance(id string, on bool) (View, error) {
	return r.with(id, func(s *Session) error {
		if s.short != nil {
			s.short.SetAutoAdvance(on)
		} else {
			s.long.SetAutoAdvance(on)
		}
		return nil
	})
}

// End removes a session and reports whether it existed.
func (r *Registry) End(id string) bool {
	return r.sessions.Delete(id)
}

// UpdateShortItems replaces the item list of every live short session.
// Sessions keep playing their current item when it is still in items.
func (r *Registry) UpdateShortItems(items []models.ContentItem) int {
	if len(items) == 0 {
		return 0
	}
	updated := 0
	r.sessions.Range(func(_ string, s *Session) bool {
		s.mu.Lock()
		if s.short != nil && s.short.SetItems(items) == nil {
			updated++
		}
		s.mu.Unlock()
		return true
	})
	return updated
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Close stops the registry's expiry sweep and ends every session.
func (r *Registry) Close() {
	r.sessions.Close()
	r.sessions.Clear()
}

// ClampRatio limits a progress ratio to [0,1]. NaN becomes 0.
func ClampRatio(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
