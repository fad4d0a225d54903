// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/playback"
)

// InteractionStatus is the state of one item after a mutation.
type InteractionStatus struct {
	ID       string   `json:"id"`
	Liked    bool     `json:"liked"`
	Disliked bool     `json:"disliked"`
	Saved    bool     `json:"saved"`
	Progress *float64 `json:"progress,omitempty"`
}

func statusOf(snap *interaction.Snapshot, id string) InteractionStatus {
	st := InteractionStatus{
		ID:       id,
		Liked:    snap.IsLiked(id),
		Disliked: snap.IsDisliked(id),
		Saved:    snap.IsSaved(id),
	}
	if p, ok := snap.Progress(id); ok {
		st.Progress = &p
	}
	return st
}

// Interactions serves the full interaction state.
func (h *Handler) Interactions(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.interactions.Snapshot())
}

// itemIdentity reads the {id} path parameter and resolves an alternate id
// or media url of a feed item to the item's identity, so every form of an
// item lands on the same interaction entry.
func (h *Handler) itemIdentity(rw *ResponseWriter, r *http.Request) (string, bool) {
	id, ok := pathIdentity(rw, r, "id")
	if !ok {
		return "", false
	}
	return h.engine.Canonical(id), true
}

// mutate runs one interaction mutator on the {id} path parameter.
func (h *Handler) mutate(fn func(s *interaction.Store, ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)
		id, ok := h.itemIdentity(rw, r)
		if !ok {
			return
		}
		if err := fn(h.interactions, r.Context(), id); err != nil {
			writeDomainError(rw, err)
			return
		}
		rw.Success(statusOf(h.interactions.Snapshot(), id))
	}
}

// Like marks an item liked and clears a dislike.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.mutate((*interaction.Store).Like)(w, r)
}

// Dislike marks an item disliked and clears a like.
func (h *Handler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.mutate((*interaction.Store).Dislike)(w, r)
}

// Save adds an item to the saved collection.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	h.mutate((*interaction.Store).Save)(w, r)
}

// Unsave removes an item from the saved collection.
func (h *Handler) Unsave(w http.ResponseWriter, r *http.Request) {
	h.mutate((*interaction.Store).Unsave)(w, r)
}

// Restore clears a dislike.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	h.mutate((*interaction.Store).Restore)(w, r)
}

// Progress records watch progress. The ratio is taken as given or derived
// from position and duration, then clamped into [0,1].
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := h.itemIdentity(rw, r)
	if !ok {
		return
	}
	var req ProgressRequest
	if !decodeBody(rw, r, &req, false) {
		return
	}

	var ratio float64
	if req.Ratio != nil {
		ratio = *req.Ratio
	} else {
		ratio = *req.Position / *req.Duration
	}
	if err := h.interactions.RecordProgress(r.Context(), id, playback.ClampRatio(ratio)); err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.Success(statusOf(h.interactions.Snapshot(), id))
}
