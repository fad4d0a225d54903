// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package feed composes the ordered content feed and derives its presentation.

# Composition

A Composer turns a raw catalog into a Feed in three steps:

 1. Deduplicate by identity (first occurrence wins) and drop items whose id,
    alternate id or media url is on the admin exclusion list.
 2. Ask the ranking adapter for an order. On failure, shuffle the filtered ids.
 3. Place ranked items first, ignoring unknown and repeated ids, then append
    the remaining items in catalog order.

The feed is always a permutation of the filtered catalog.

# Layout

Derive arranges a feed for one interaction snapshot:

  - Shorts and Longs are the display tracks in feed order. Watched long items
    sink below unseen ones. Liked and disliked items are hidden unless
    HideInteracted(false) is given.
  - ContinueWatching lists partially watched items in watch history order.
  - Affinity lists un-rated items sharing a category with a liked item,
    shuffled by the composition's seed so the order is stable between
    refreshes and changes on each one.

# Engine

The Engine runs composition cycles and publishes immutable Compositions.
Cycles never overlap: a periodic refresh that finds one running is skipped
with ErrRefreshInProgress, while startup and manual refreshes cancel an
in-flight periodic cycle and then wait for the lock. Each cycle snapshots
exclusions and interactions at its start, so concurrent mutations apply to
the next cycle. A catalog failure leaves the previous Composition published.
*/
package feed
