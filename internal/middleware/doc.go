// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package middleware holds the server's own chi middleware:

  - RequestID: request and correlation ids plus a request-scoped zerolog
    logger in the context (read it back with logging.Ctx).
  - AccessLog: one log line per request, raised to warn for 5xx or slow
    responses.
  - PrometheusMetrics: api_requests_total and api_request_duration_seconds
    labelled by chi route pattern.
  - PerformanceMonitor: a sliding window of recent requests with per
    endpoint percentiles, served at /api/v1/admin/performance.

CORS, rate limiting, compression, body limits and panic recovery come from
go-chi/cors, go-chi/httprate and chi's own middleware package and are
assembled in internal/api.
*/
package middleware
