// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package ranking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/models"
)

// FailureKind classifies why a ranking call produced no order.
type FailureKind string

const (
	// KindTransport covers network failures and non-2xx responses.
	KindTransport FailureKind = "transport"

	// KindTimeout means the call exceeded its deadline.
	KindTimeout FailureKind = "timeout"

	// KindMalformed means the response was not a list of ids.
	KindMalformed FailureKind = "malformed"

	// KindUnavailable means no call was attempted: no service is configured,
	// the circuit is open, or the client-side rate limit refused the call.
	KindUnavailable FailureKind = "unavailable"
)

// RankingError is the failure half of a Result.
type RankingError struct {
	Kind FailureKind
	Err  error
}

func (e *RankingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ranking %s", e.Kind)
	}
	return fmt.Sprintf("ranking %s: %v", e.Kind, e.Err)
}

func (e *RankingError) Unwrap() error { return e.Err }

// Result is either an ordered id list or a *RankingError. It never carries both.
type Result struct {
	ids []string
	err *RankingError
}

// Ranked wraps a successful order.
func Ranked(ids []string) Result {
	if ids == nil {
		ids = []string{}
	}
	return Result{ids: ids}
}

// Failed wraps a failure.
func Failed(kind FailureKind, err error) Result {
	return Result{err: &RankingError{Kind: kind, Err: err}}
}

// OK reports whether the ranking service produced an order.
func (r Result) OK() bool { return r.err == nil }

// IDs returns the ranked ids, or nil on failure.
func (r Result) IDs() []string {
	if r.err != nil {
		return nil
	}
	return append([]string(nil), r.ids...)
}

// Err returns the failure, or nil.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Kind returns the failure kind, or "" on success.
func (r Result) Kind() FailureKind {
	if r.err == nil {
		return ""
	}
	return r.err.Kind
}

// OrElse returns the ranked ids, or the output of fallback on failure.
func (r Result) OrElse(fallback func() []string) []string {
	if r.err == nil {
		return r.IDs()
	}
	return fallback()
}

// Ranker orders a catalog for a viewer.
type Ranker interface {
	Rank(ctx context.Context, catalog []models.ContentItem, snap *interaction.Snapshot) Result
}

// RankerFunc adapts a function to Ranker.
type RankerFunc func(ctx context.Context, catalog []models.ContentItem, snap *interaction.Snapshot) Result

// Rank calls f.
func (f RankerFunc) Rank(ctx context.Context, catalog []models.ContentItem, snap *interaction.Snapshot) Result {
	return f(ctx, catalog, snap)
}

// errNotConfigured is reported by Unavailable.
var errNotConfigured = errors.New("no ranking service configured")

// Unavailable is the Ranker used when no ranking service is configured.
type Unavailable struct{}

// Rank always fails with KindUnavailable.
func (Unavailable) Rank(context.Context, []models.ContentItem, *interaction.Snapshot) Result {
	return Failed(KindUnavailable, errNotConfigured)
}

// Item is the projection of a ContentItem sent to the ranking service.
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// Request is the ranking service request body.
type Request struct {
	Items         []Item   `json:"items"`
	HistoryTitles []string `json:"historyTitles"`
	LikedIDs      []string `json:"likedIds"`
}

// BuildRequest projects catalog and snap into a ranking request.
// History titles follow catalog order.
func BuildRequest(catalog []models.ContentItem, snap *interaction.Snapshot) Request {
	req := Request{
		Items:         make([]Item, 0, len(catalog)),
		HistoryTitles: []string{},
		LikedIDs:      []string{},
	}

	for _, item := range catalog {
		id := models.IdentityOf(item)
		req.Items = append(req.Items, Item{ID: id, Title: item.Title, Category: item.Category})
		if snap != nil && snap.InHistory(id) {
			req.HistoryTitles = append(req.HistoryTitles, item.Title)
		}
	}
	if snap != nil {
		if liked := snap.LikedIDs(); len(liked) > 0 {
			req.LikedIDs = liked
		}
	}
	return req
}

// Fallback returns every id exactly once in an order drawn from rng.
func Fallback(ids []string, rng *rand.Rand) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
