// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of both health endpoints.
type HealthStatus struct {
	Status        string     `json:"status"`
	Uptime        float64    `json:"uptimeSeconds"`
	Generation    uint64     `json:"generation,omitempty"`
	ComposedAt    *time.Time `json:"composedAt,omitempty"`
	Sessions      int        `json:"playbackSessions"`
	WebsocketSubs int        `json:"websocketClients"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:   "ok",
		Uptime:   time.Since(h.startTime).Seconds(),
		Sessions: h.sessions.Len(),
	})
}

// HealthReady reports 200 once a feed has been published, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	comp := h.engine.Current()
	if comp == nil {
		rw.ServiceUnavailable("feed has not been composed yet")
		return
	}

	status := HealthStatus{
		Status:     "ready",
		Uptime:     time.Since(h.startTime).Seconds(),
		Generation: comp.Generation,
		ComposedAt: &comp.ComposedAt,
		Sessions:   h.sessions.Len(),
	}
	if h.hub != nil {
		status.WebsocketSubs = h.hub.ClientCount()
	}
	rw.SuccessForGeneration(status, comp.Generation)
}
