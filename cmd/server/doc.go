// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package main is the entry point for the Reelcast server.

Reelcast composes a personalized media feed from a content catalog, an
optional external ranking service and the viewer's interaction history,
and drives server-side playback sessions that decide what plays next.

# Process Tree

The server runs under Suture v4 supervision:

	RootSupervisor ("reelcast")
	├── CoreSupervisor ("core-layer")
	│   ├── WebSocket Hub (composition announcements)
	│   └── Feed Refresh (startup and periodic composition)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

A panicking refresh loop is restarted inside the core layer while the HTTP
server keeps serving the last published feed.

# Startup

 1. Configuration: Koanf v2 from defaults, config.yaml and the environment
 2. Logging: zerolog, json or console
 3. Storage: badger, redis or memory repository for interaction state and
    admin exclusions
 4. Catalog: a JSON file or an HTTP endpoint behind a ristretto cache
 5. Ranking: HTTP client with rate limiting and a circuit breaker, or the
    shuffle fallback when no ranking url is configured
 6. Feed engine and playback registry
 7. HTTP API and websocket hub

# Configuration

Common environment variables:

	CATALOG_URL=https://cdn.example.com/catalog.json
	CATALOG_FILE=/data/catalog.json      # instead of CATALOG_URL
	RANKING_URL=https://rank.example.com/v1/rank
	STORAGE_BACKEND=badger               # badger, redis or memory
	STORAGE_PATH=/data/reelcast
	REFRESH_INTERVAL=5m
	HTTP_PORT=8080
	LOG_LEVEL=info

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within SHUTDOWN_TIMEOUT, then storage is closed.
*/
package main
