// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry at package init and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Feed Metrics:
  - feed_refresh_total: Composition cycles (counter)
    Labels: trigger, outcome
  - feed_refresh_duration_seconds: Published cycle latency (histogram)
  - feed_items, feed_generation: Published feed (gauges)
  - feed_catalog_items_dropped_total: Deduplicated, unidentifiable or excluded items

Ranking Metrics:
  - ranking_requests_total: Calls by result (ranked, fallback)
  - ranking_fallbacks_total: Fallbacks by failure kind
  - circuit_breaker_*: Breaker state, requests and transitions

Interaction Metrics:
  - interaction_mutations_total: State-changing mutations by operation
  - persistence_errors_total: Failed storage writes by key
  - persisted_state_repairs_total: Entries repaired on load

HTTP Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests

Playback and WebSocket Metrics:
  - playback_sessions_active, playback_transitions_total
  - websocket_connections, websocket_messages_sent_total

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
