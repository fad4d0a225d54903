// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/reelcast/internal/feed"
	"github.com/tomtom215/reelcast/internal/middleware"
	ws "github.com/tomtom215/reelcast/internal/websocket"
)

// ExclusionResponse is the body of POST /admin/exclusions.
type ExclusionResponse struct {
	ID    string `json:"id"`
	Added bool   `json:"added"`

	// Generation is the feed generation published after the exclusion, or
	// zero when the refresh did not publish.
	Generation uint64 `json:"generation,omitempty"`
}

// PerformanceResponse is the body of GET /admin/performance.
type PerformanceResponse struct {
	Endpoints []middleware.EndpointStats  `json:"endpoints"`
	Recent    []middleware.RequestMetrics `json:"recent"`
}

// Exclusions lists the admin exclusion entries.
func (h *Handler) Exclusions(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.exclusions.Snapshot().Entries())
}

// AddExclusion hides an item from every future feed and recomposes the
// feed without it.
func (h *Handler) AddExclusion(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req ExclusionRequest
	if !decodeBody(rw, r, &req, false) {
		return
	}

	added, err := h.exclusions.Add(r.Context(), req.ID)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	resp := ExclusionResponse{ID: req.ID, Added: added}
	if !added {
		rw.Success(resp)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.MessageTypeExclusion, map[string]string{"id": req.ID})
	}

	ctx, cancel := h.detached(r.Context())
	defer cancel()
	comp, err := h.engine.Refresh(ctx, feed.TriggerManual, false)
	if err != nil {
		// The exclusion is persisted and applies from the next cycle.
		h.logger.Warn().Err(err).Str("entry", req.ID).Msg("Refresh after exclusion failed")
	} else {
		resp.Generation = comp.Generation
	}
	rw.Created(resp)
}

// Performance serves recent request latencies per endpoint.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	recent := 50
	if s := r.URL.Query().Get("recent"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > 1000 {
			rw.Error(http.StatusBadRequest, ErrCodeValidation, "recent must be an integer in [0,1000]")
			return
		}
		recent = n
	}
	rw.Success(PerformanceResponse{
		Endpoints: h.perfMon.GetStats(),
		Recent:    h.perfMon.GetRecentMetrics(recent),
	})
}
