// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/reelcast/internal/models"
	"github.com/tomtom215/reelcast/internal/playback"
)

// PlaybackProgressResponse is the body of POST /playback/{session}/progress.
type PlaybackProgressResponse struct {
	Session  playback.View           `json:"session"`
	Progress playback.ProgressReport `json:"progress"`
}

func autoAdvanceOrDefault(v *bool) bool {
	return v == nil || *v
}

// StartShortPlayback opens a short-form session over the current short
// track, positioned on startId when it is in the track.
func (h *Handler) StartShortPlayback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req StartPlaybackRequest
	if !decodeBody(rw, r, &req, true) {
		return
	}
	comp, layout, err := h.engine.Layout()
	if err != nil {
		writeDomainError(rw, err)
		return
	}

	view, err := h.sessions.StartShort(layout.Shorts, h.engine.Canonical(req.StartID), autoAdvanceOrDefault(req.AutoAdvance))
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	h.logger.Debug().Str("session", view.ID).Uint64("generation", comp.Generation).Msg("Short session started")
	rw.Created(view)
}

// StartLongPlayback opens a long-form session on startId.
func (h *Handler) StartLongPlayback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req StartPlaybackRequest
	if !decodeBody(rw, r, &req, false) {
		return
	}
	if req.StartID == "" {
		rw.Error(http.StatusBadRequest, ErrCodeValidation, "startId is required")
		return
	}
	item, ok := h.lookupLong(rw, req.StartID)
	if !ok {
		return
	}
	rw.Created(h.sessions.StartLong(item, autoAdvanceOrDefault(req.AutoAdvance)))
}

// lookupLong resolves id to a long-form item of the current feed.
func (h *Handler) lookupLong(rw *ResponseWriter, id string) (models.ContentItem, bool) {
	if !h.engine.Ready() {
		rw.ServiceUnavailable("feed has not been composed yet")
		return models.ContentItem{}, false
	}
	item, found := h.engine.Lookup(id)
	if !found {
		rw.NotFound("item is not in the current feed")
		return models.ContentItem{}, false
	}
	if item.Kind != models.KindLong {
		rw.BadRequest("item is not long-form")
		return models.ContentItem{}, false
	}
	return item, true
}

// sessionID validates the {session} path parameter.
func sessionID(rw *ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "session")
	if _, err := uuid.Parse(id); err != nil {
		rw.NotFound("playback session not found or expired")
		return "", false
	}
	return id, true
}

// GetPlayback serves the session's current view.
func (h *Handler) GetPlayback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := sessionID(rw, r)
	if !ok {
		return
	}
	view, err := h.sessions.Get(id)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.Success(view)
}

// PlaybackFinished applies the continuation policy. Short sessions draw
// from the liked-weighted pool; long sessions chain into the current long
// track.
func (h *Handler) PlaybackFinished(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := sessionID(rw, r)
	if !ok {
		return
	}

	var suggestions []models.ContentItem
	if _, layout, err := h.engine.Layout(); err == nil {
		suggestions = layout.Longs
	}
	view, err := h.sessions.Finished(id, h.interactions.Snapshot(), suggestions)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.Success(view)
}

// PlaybackNavigate jumps a short session to an index or item id.
func (h *Handler) PlaybackNavigate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := sessionID(rw, r)
	if !ok {
		return
	}
	var req NavigateRequest
	if !decodeBody(rw, r, &req, false) {
		return
	}

	var (
		view playback.View
		err  error
	)
	if req.Index != nil {
		view, err = h.sessions.Navigate(id, *req.Index)
	} else {
		view, err = h.sessions.NavigateTo(id, h.engine.Canonical(req.ID))
	}
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.Success(view)
}

// PlaybackSelect replaces the item of a long session.
func (h *Handler) PlaybackSelect(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := sessionID(rw, r)
	if !ok {
		return
	}
	var req SelectRequest
	if !decodeBody(rw, r, &req, false) {
		return
	}
	item, ok := h.lookupLong(rw, req.ID)
	if !ok {
		return
	}
	view, err := h.sessions.Select(id, item)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.Success(view)
}

// PlaybackProgress records the player position and stores the derived
// watch ratio in the interaction state.
func (h *Handler) PlaybackProgress(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := sessionID(rw, r)
	if !ok {
		return
	}
	var req PositionRequest
	if !decodeBody(rw, r, &req, false) {
		return
	}

	view, report, err := h.sessions.Progress(id, req.Position, req.Duration)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	if report.ItemID != "" {
		if err := h.interactions.RecordProgress(r.Context(), report.ItemID, report.Ratio); err != nil {
			writeDomainError(rw, err)
			return
		}
	}
	rw.Success(PlaybackProgressResponse{Session: view, Progress: report})
}

// PlaybackAutoplay toggles auto-advance.
func (h *Handler) PlaybackAutoplay(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := sessionID(rw, r)
	if !ok {
		return
	}
	var req AutoplayRequest
	if !decodeBody(rw, r, &req, false) {
		return
	}
	view, err := h.sessions.SetAutoAdvance(id, *req.Enabled)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.Success(view)
}

// EndPlayback closes a session.
func (h *Handler) EndPlayback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := sessionID(rw, r)
	if !ok {
		return
	}
	if !h.sessions.End(id) {
		rw.NotFound("playback session not found or expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
