// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package interaction holds the viewer's interaction state: liked, disliked and
saved item ids plus the ordered watch history with per-item progress.

# Invariants

  - An id is never both liked and disliked. Like and Dislike move the id
    between the two sets.
  - Progress for an id only increases. RecordProgress keeps the maximum.
  - Only ids are stored, never item payloads.

# Persistence

The Store is write-through: every mutation that changes state is persisted
to a storage.Repository under storage.KeyInteractionState before the call
returns, while the store lock is still held, so persisted blobs follow
mutation order. Mutations that change nothing do not write.

Load degrades gracefully. An absent or malformed blob yields the zero state,
and structurally corrupt entries are repaired individually:

  - An id present in both liked and disliked keeps only the dislike.
  - A watch history entry with progress outside [0,1] is dropped.

# Snapshots

Composition cycles and playback policies never read the live Store. They take
an immutable Snapshot with constant-time membership lookups:

	snap := store.Snapshot()
	if snap.IsLiked(id) { ... }
*/
package interaction
