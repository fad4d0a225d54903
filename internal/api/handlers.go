// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/exclusion"
	"github.com/tomtom215/reelcast/internal/feed"
	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/middleware"
	"github.com/tomtom215/reelcast/internal/playback"
	ws "github.com/tomtom215/reelcast/internal/websocket"
)

// Handler serves the HTTP API. Methods are split by surface:
//   - handlers_health.go: liveness and readiness
//   - handlers_feed.go: layout, search, collections, item lookup, refresh
//   - handlers_interactions.go: like, dislike, save, restore, progress
//   - handlers_admin.go: exclusions and request performance
//   - handlers_playback.go: continuation sessions
type Handler struct {
	engine       *feed.Engine
	interactions *interaction.Store
	exclusions   *exclusion.List
	sessions     *playback.Registry
	hub          *ws.Hub
	perfMon      *middleware.PerformanceMonitor
	logger       zerolog.Logger
	startTime    time.Time

	// refreshTimeout bounds refreshes started from a request. They are
	// detached from the request so a dropped client cannot cancel them.
	refreshTimeout time.Duration
}

// Deps are the collaborators of a Handler. Hub and PerfMon are optional.
type Deps struct {
	Engine       *feed.Engine
	Interactions *interaction.Store
	Exclusions   *exclusion.List
	Sessions     *playback.Registry
	Hub          *ws.Hub
	PerfMon      *middleware.PerformanceMonitor
}

// NewHandler creates the API handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(deps Deps, logger zerolog.Logger) *Handler {
	perf := deps.PerfMon
	if perf == nil {
		perf = middleware.NewPerformanceMonitor(1000)
	}
	return &Handler{
		engine:         deps.Engine,
		interactions:   deps.Interactions,
		exclusions:     deps.Exclusions,
		sessions:       deps.Sessions,
		hub:            deps.Hub,
		perfMon:        perf,
		logger:         logger.With().Str("component", "api").Logger(),
		startTime:      time.Now(),
		refreshTimeout: 2 * time.Minute,
	}
}

// detached returns a context for work that must outlive the request.
func (h *Handler) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), h.refreshTimeout)
}
