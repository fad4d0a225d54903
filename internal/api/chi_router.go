// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelcast/internal/middleware"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	Middleware *ChiMiddlewareConfig

	// MaxBodyBytes caps request bodies on /api/v1. Zero means 1 MiB.
	MaxBodyBytes int64

	// SlowRequest promotes access log entries to warn.
	SlowRequest time.Duration

	// WebSocket is mounted at /api/v1/ws when non-nil.
	WebSocket http.Handler
}

// NewRouter builds the chi router for the whole HTTP surface.
//
// Middleware order:
//   - global: request id, real ip, recoverer, CORS, access log
//   - /api/v1: rate limit, prometheus, performance, body size, compression
//
// The websocket endpoint sits outside compression since the upgrade needs
// the raw connection.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.SlowRequest <= 0 {
		cfg.SlowRequest = time.Second
	}
	mw := NewChiMiddleware(cfg.Middleware)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.AccessLog(cfg.SlowRequest))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "method not allowed")
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(h.perfMon.Middleware)

		if cfg.WebSocket != nil {
			r.Method(http.MethodGet, "/ws", cfg.WebSocket)
		}

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.RequestSize(cfg.MaxBodyBytes))
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Get("/health/live", h.HealthLive)
			r.Get("/health/ready", h.HealthReady)

			r.Route("/feed", func(r chi.Router) {
				r.Get("/", h.Feed)
				r.Get("/search", h.FeedSearch)
				r.Get("/collections/{name}", h.FeedCollection)
				r.Get("/items/{id}", h.FeedItem)
				r.Post("/refresh", h.FeedRefresh)
			})

			r.Route("/interactions", func(r chi.Router) {
				r.Get("/", h.Interactions)
				r.Post("/{id}/like", h.Like)
				r.Post("/{id}/dislike", h.Dislike)
				r.Post("/{id}/save", h.Save)
				r.Delete("/{id}/save", h.Unsave)
				r.Post("/{id}/restore", h.Restore)
				r.Post("/{id}/progress", h.Progress)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/exclusions", h.Exclusions)
				r.Post("/exclusions", h.AddExclusion)
				r.Get("/performance", h.Performance)
			})

			r.Route("/playback", func(r chi.Router) {
				r.Post("/short", h.StartShortPlayback)
				r.Post("/long", h.StartLongPlayback)
				r.Route("/{session}", func(r chi.Router) {
					r.Get("/", h.GetPlayback)
					r.Delete("/", h.EndPlayback)
					r.Post("/finished", h.PlaybackFinished)
					r.Post("/navigate", h.PlaybackNavigate)
					r.Post("/select", h.PlaybackSelect)
					r.Post("/progress", h.PlaybackProgress)
					r.Post("/autoplay", h.PlaybackAutoplay)
				})
			})
		})
	})

	return r
}
