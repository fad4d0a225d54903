// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package services adapts server components to suture.Service.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - WebSocketHubService: delegates to the hub's RunWithContext.
  - RefreshService: a hard refresh at startup, then a non-hard periodic
    refresh every interval. A tick that finds a cycle in flight is skipped.

Components are reached through small interfaces (HTTPServer, ContextHub,
Refresher) so tests can substitute hand-written fakes.
*/
package services
