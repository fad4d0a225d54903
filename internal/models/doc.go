// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package models defines the content item shared by every layer of the engine.

A ContentItem is one playable asset from the catalog. Items carry up to
three identifiers and the engine always compares them through IdentityOf,
which prefers the stable id, then the provider public id, then the media
url:

	id := models.IdentityOf(item)

The wire names match the catalog JSON ("id", "public_id", "video_url",
"type"). A type of "short" selects the vertical swipe track; anything else,
including a missing type, is long-form.
*/
package models
