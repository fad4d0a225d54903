// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package websocket pushes refresh announcements to connected players.

Players keep one connection open to /api/v1/ws. Whenever the feed engine
publishes a composition the hub sends

	{"type":"feed_published","data":{"compositionId":"...","generation":7,
	 "trigger":"periodic","items":120,"outcome":{"ranked":true,"fallback":false},
	 "composedAt":"2026-10-18T10:00:00Z"}}

and clients re-fetch /api/v1/feed. Admin exclusions are announced as
exclusion_added. Clients may send {"type":"ping"} and get a pong back.

The hub runs as a supervised service (RunWithContext). Broadcasts never
block the caller: a full queue drops the message and a slow client is
disconnected, which is safe because every message only says "re-fetch".
*/
package websocket
