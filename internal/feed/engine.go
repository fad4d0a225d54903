// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package feed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/catalog"
	"github.com/tomtom215/reelcast/internal/exclusion"
	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/metrics"
	"github.com/tomtom215/reelcast/internal/models"
	"github.com/tomtom215/reelcast/internal/ranking"
)

var (
	// ErrRefreshInProgress is returned when a periodic refresh finds a cycle running.
	ErrRefreshInProgress = errors.New("feed refresh already in progress")

	// ErrRefreshCanceled is returned when a cycle was abandoned before publishing.
	ErrRefreshCanceled = errors.New("feed refresh canceled")

	// ErrNoComposition is returned by read models before the first publish.
	ErrNoComposition = errors.New("no feed composed yet")
)

// Trigger names what started a composition cycle.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerPeriodic Trigger = "periodic"
	TriggerManual   Trigger = "manual"
)

// Composition is the published result of one cycle. It is immutable.
type Composition struct {
	ID          string        `json:"id"`
	Generation  uint64        `json:"generation"`
	Trigger     Trigger       `json:"trigger"`
	Hard        bool          `json:"hard"`
	ComposedAt  time.Time     `json:"composedAt"`
	Duration    time.Duration `json:"-"`
	ShuffleSeed int64         `json:"-"`
	Outcome     Outcome       `json:"outcome"`
	Feed        *Feed         `json:"-"`
}

// Engine runs composition cycles and serves read models over the latest
// published Composition.
type Engine struct {
	cfg          *Config
	source       catalog.Source
	exclusions   *exclusion.List
	interactions *interaction.Store
	composer     *Composer
	logger       zerolog.Logger

	seedMu sync.Mutex
	seeds  *rand.Rand

	refreshMu sync.Mutex

	inflightMu     sync.Mutex
	inflightCancel context.CancelFunc
	inflightKind   Trigger

	current atomic.Pointer[Composition]

	listenersMu sync.RWMutex
	listeners   []func(*Composition)
}

// NewEngine creates a feed engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(
	cfg *Config,
	source catalog.Source,
	ranker ranking.Ranker,
	exclusions *exclusion.List,
	interactions *interaction.Store,
	logger zerolog.Logger,
) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil || ranker == nil || exclusions == nil || interactions == nil {
		return nil, errors.New("feed engine requires a catalog source, ranker, exclusion list and interaction store")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seeds := rand.New(rand.NewSource(seed))                //nolint:gosec // math/rand is fine for feed shuffling
	composerRNG := rand.New(rand.NewSource(seeds.Int63())) //nolint:gosec // math/rand is fine for feed shuffling

	log := logger.With().Str("component", "feed").Logger()
	return &Engine{
		cfg:          cfg,
		source:       source,
		exclusions:   exclusions,
		interactions: interactions,
		composer:     NewComposer(ranker, composerRNG, logger),
		seeds:        seeds,
		logger:       log,
	}, nil
}

// OnPublish registers fn to run after each published composition.
// fn runs on the refreshing goroutine and must not block.
func (e *Engine) OnPublish(fn func(*Composition)) {
	e.listenersMu.Lock()
	e.listeners = append(e.listeners, fn)
	e.listenersMu.Unlock()
}

// Refresh runs one composition cycle.
//
// Cycles never overlap. A periodic refresh that finds a cycle running is
// skipped with ErrRefreshInProgress. Startup and manual refreshes cancel an
// in-flight periodic cycle, whose result is discarded, then wait their turn.
// A hard refresh purges the catalog transport cache first.
//
// When the catalog cannot be fetched the previous composition stays published.
func (e *Engine) Refresh(ctx context.Context, trigger Trigger, hard bool) (*Composition, error) {
	if trigger == TriggerPeriodic {
		if !e.refreshMu.TryLock() {
			metrics.RecordRefresh(string(trigger), "skipped", 0)
			return nil, ErrRefreshInProgress
		}
	} else {
		e.cancelPeriodic()
		e.refreshMu.Lock()
	}
	defer e.refreshMu.Unlock()

	cycleCtx, cancel := context.WithTimeout(ctx, e.cfg.CycleTimeout)
	defer cancel()
	e.setInflight(trigger, cancel)
	defer e.setInflight("", nil)

	return e.runCycle(cycleCtx, trigger, hard)
}

// cancelPeriodic aborts a running periodic cycle.
func (e *Engine) cancelPeriodic() {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()

	if e.inflightKind == TriggerPeriodic && e.inflightCancel != nil {
		e.logger.Info().Msg("Canceling in-flight periodic refresh")
		e.inflightCancel()
	}
}

func (e *Engine) setInflight(trigger Trigger, cancel context.CancelFunc) {
	e.inflightMu.Lock()
	e.inflightKind = trigger
	e.inflightCancel = cancel
	e.inflightMu.Unlock()
}

func (e *Engine) runCycle(ctx context.Context, trigger Trigger, hard bool) (*Composition, error) {
	start := time.Now()
	id := uuid.New().String()
	log := e.logger.With().Str("cycle_id", id).Str("trigger", string(trigger)).Bool("hard", hard).Logger()

	if hard {
		if p, ok := e.source.(catalog.Purger); ok {
			p.Purge()
		}
	}

	// Later mutations only affect the next cycle.
	excl := e.exclusions.Snapshot()
	snap := e.interactions.Snapshot()

	items, err := e.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			metrics.RecordRefresh(string(trigger), "canceled", time.Since(start))
			return nil, fmt.Errorf("%w: %w", ErrRefreshCanceled, err)
		}
		metrics.RecordRefresh(string(trigger), "catalog_error", time.Since(start))
		log.Error().Err(err).Msg("Catalog fetch failed, keeping previous feed")
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	f, outcome := e.composer.Compose(ctx, Inputs{Catalog: items, Exclusions: excl, Interactions: snap})

	if errors.Is(ctx.Err(), context.Canceled) {
		metrics.RecordRefresh(string(trigger), "canceled", time.Since(start))
		log.Info().Msg("Refresh canceled before publish, discarding result")
		return nil, ErrRefreshCanceled
	}

	comp := &Composition{
		ID:          id,
		Trigger:     trigger,
		Hard:        hard,
		ComposedAt:  time.Now(),
		Duration:    time.Since(start),
		ShuffleSeed: e.nextSeed(),
		Outcome:     outcome,
		Feed:        f,
	}
	e.publish(comp)

	metrics.RecordRefresh(string(trigger), "published", comp.Duration)
	metrics.RecordPublishedFeed(comp.Generation, f.Len())
	log.Info().
		Uint64("generation", comp.Generation).
		Int("catalog", len(items)).
		Int("feed", f.Len()).
		Bool("ranked", outcome.Ranked).
		Dur("duration", comp.Duration).
		Msg("Feed published")

	e.notify(comp)
	return comp, nil
}

// publish installs comp with the next generation number.
func (e *Engine) publish(comp *Composition) {
	for {
		prev := e.current.Load()
		var gen uint64 = 1
		if prev != nil {
			gen = prev.Generation + 1
		}
		comp.Generation = gen
		if e.current.CompareAndSwap(prev, comp) {
			return
		}
	}
}

func (e *Engine) notify(comp *Composition) {
	e.listenersMu.RLock()
	listeners := make([]func(*Composition), len(e.listeners))
	copy(listeners, e.listeners)
	e.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(comp)
	}
}

func (e *Engine) nextSeed() int64 {
	e.seedMu.Lock()
	defer e.seedMu.Unlock()
	return e.seeds.Int63()
}

// Current returns the latest published composition, or nil before the first.
func (e *Engine) Current() *Composition {
	return e.current.Load()
}

// Ready reports whether a composition has been published.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Layout derives the presentation layout of the current feed against the
// live interaction state.
func (e *Engine) Layout() (*Composition, Layout, error) {
	comp := e.current.Load()
	if comp == nil {
		return nil, Layout{}, ErrNoComposition
	}
	return comp, Derive(comp.Feed, e.interactions.Snapshot(), comp.ShuffleSeed, HideInteracted(e.cfg.HideInteracted)), nil
}

// Search finds feed items by title. A non-positive limit uses the default.
func (e *Engine) Search(query string, limit int) ([]models.ContentItem, error) {
	comp := e.current.Load()
	if comp == nil {
		return nil, ErrNoComposition
	}
	if limit <= 0 {
		limit = e.cfg.SearchDefaultLimit
	}
	if limit > e.cfg.SearchMaxLimit {
		limit = e.cfg.SearchMaxLimit
	}
	return Search(comp.Feed, query, limit), nil
}

// Collection lists the current feed items in an interaction collection.
func (e *Engine) Collection(name CollectionName) ([]models.ContentItem, error) {
	comp := e.current.Load()
	if comp == nil {
		return nil, ErrNoComposition
	}
	return Collection(comp.Feed, e.interactions.Snapshot(), name), nil
}

// Lookup finds an item of the current feed by identity.
func (e *Engine) Lookup(id string) (models.ContentItem, bool) {
	comp := e.current.Load()
	if comp == nil {
		return models.ContentItem{}, false
	}
	return comp.Feed.Lookup(id)
}

// Canonical maps any identifier of a current feed item to its identity.
// Ids not in the feed are returned unchanged.
func (e *Engine) Canonical(id string) string {
	comp := e.current.Load()
	if comp == nil {
		return id
	}
	return comp.Feed.Canonical(id)
}
