// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelcast/internal/feed"
	"github.com/tomtom215/reelcast/internal/models"
)

// FeedResponse is the body of GET /feed.
type FeedResponse struct {
	Composition *feed.Composition     `json:"composition"`
	Layout      feed.Layout           `json:"layout"`
	Stats       map[string]feed.Stats `json:"stats"`
}

// ItemResponse is one item with its display counters.
type ItemResponse struct {
	Item  models.ContentItem `json:"item"`
	Stats feed.Stats         `json:"stats"`
}

// RefreshResponse is the body of POST /feed/refresh.
type RefreshResponse struct {
	Composition *feed.Composition `json:"composition"`
	Items       int               `json:"items"`
}

// Feed serves the layout of the current feed against live interactions.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	comp, layout, err := h.engine.Layout()
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.SuccessWithETag(FeedResponse{
		Composition: comp,
		Layout:      layout,
		Stats:       layoutStats(layout),
	}, comp.Generation)
}

// layoutStats computes display counters for every item in the layout.
func layoutStats(l feed.Layout) map[string]feed.Stats {
	out := make(map[string]feed.Stats)
	add := func(item models.ContentItem) {
		if id := models.IdentityOf(item); id != "" {
			if _, ok := out[id]; !ok {
				out[id] = feed.DisplayStats(item)
			}
		}
	}
	for _, item := range l.Shorts {
		add(item)
	}
	for _, item := range l.Longs {
		add(item)
	}
	for _, c := range l.ContinueWatching {
		add(c.Item)
	}
	for _, item := range l.Affinity {
		add(item)
	}
	return out
}

// FeedSearch serves GET /feed/search?q=&limit=.
func (h *Handler) FeedSearch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			rw.Error(http.StatusBadRequest, ErrCodeValidation, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := h.engine.Search(r.URL.Query().Get("q"), limit)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.SuccessForGeneration(items, h.generation())
}

// FeedCollection serves GET /feed/collections/{name}.
func (h *Handler) FeedCollection(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name, err := feed.ParseCollection(chi.URLParam(r, "name"))
	if err != nil {
		rw.NotFound(err.Error())
		return
	}
	items, err := h.engine.Collection(name)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.SuccessForGeneration(items, h.generation())
}

// FeedItem serves GET /feed/items/{id}.
func (h *Handler) FeedItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := pathIdentity(rw, r, "id")
	if !ok {
		return
	}
	if !h.engine.Ready() {
		writeDomainError(rw, feed.ErrNoComposition)
		return
	}
	item, found := h.engine.Lookup(id)
	if !found {
		rw.NotFound("item is not in the current feed")
		return
	}
	rw.SuccessForGeneration(ItemResponse{Item: item, Stats: feed.DisplayStats(item)}, h.generation())
}

// FeedRefresh runs a manual refresh and waits for it to publish.
func (h *Handler) FeedRefresh(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req RefreshRequest
	if !decodeBody(rw, r, &req, true) {
		return
	}

	ctx, cancel := h.detached(r.Context())
	defer cancel()
	comp, err := h.engine.Refresh(ctx, feed.TriggerManual, req.Hard)
	if err != nil {
		if errors.Is(err, feed.ErrRefreshCanceled) || errors.Is(err, feed.ErrRefreshInProgress) {
			writeDomainError(rw, err)
			return
		}
		// The catalog failed; the previous feed stays published.
		h.logger.Warn().Err(err).Bool("hard", req.Hard).Msg("Manual refresh failed")
		rw.ServiceUnavailable("catalog unavailable, previous feed kept")
		return
	}
	rw.SuccessForGeneration(RefreshResponse{Composition: comp, Items: comp.Feed.Len()}, comp.Generation)
}

func (h *Handler) generation() uint64 {
	if comp := h.engine.Current(); comp != nil {
		return comp.Generation
	}
	return 0
}
