// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package playback decides what plays next.

Two policies are provided. ShortPolicy handles vertical short-form feeds:
when a short ends with auto-advance on, the next index is drawn from a
weighted pool in which every other item appears once and liked items appear
DefaultLikedWeight more times. With auto-advance off, or a single item, the
short repeats.

LongPolicy chains long-form items: on end it moves to the first suggestion
that is a different item, otherwise it restarts at position 0.

Registry keeps policies as server-side sessions keyed by uuid, expiring
idle ones through the generic TTL cache:

	reg := playback.NewRegistry(playback.DefaultConfig(), logger)
	defer reg.Close()

	view, err := reg.StartShort(layout.Shorts, startID, true)
	view, err = reg.Finished(view.ID, store.Snapshot(), nil)

Policies are not safe for concurrent use; Registry serializes access per
session.
*/
package playback
