// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package api exposes the feed engine, interaction state, admin exclusions
and playback sessions over HTTP.

Every JSON response uses the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "generation": 42}
	}

Failures set success to false and carry an error object with a machine
readable code (BAD_REQUEST, VALIDATION_ERROR, NOT_FOUND, CONFLICT,
TOO_MANY_REQUESTS, SERVICE_UNAVAILABLE, INTERNAL_ERROR).

GET /api/v1/feed is served with an ETag derived from the response body, so
clients polling an unchanged generation receive 304 Not Modified.

Refreshes started from a request (POST /feed/refresh and POST
/admin/exclusions) run detached from the request context with their own
timeout. A client that disconnects does not abort the cycle.

Routes are registered in NewRouter; see chi_router.go.
*/
package api
