// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package ranking adapts the external ranking service.

The service receives the (id, title, category) projection of the filtered
catalog, the titles of watched items and the liked ids, and answers with an
ordered list of ids. Its answers are advisory: they may omit, repeat or invent
ids, and the service may be slow or absent entirely.

# Result Boundary

Rank never returns a partially ranked feed. It returns a Result that is
either an ordered id list or a *RankingError whose Kind is one of transport,
timeout, malformed or unavailable. The caller chooses the fallback
explicitly:

	order := ranker.Rank(ctx, items, snap).OrElse(func() []string {
	    return ranking.Fallback(ids, rng)
	})

# Resilience

The HTTP Client applies a per-call timeout, a client-side token bucket
(golang.org/x/time/rate) and a circuit breaker (sony/gobreaker). A rejected
call reports KindUnavailable without touching the network.
*/
package ranking
