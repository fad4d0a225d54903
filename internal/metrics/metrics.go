// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed Refresh Metrics
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_refresh_total",
			Help: "Total number of feed composition cycles by trigger and outcome",
		},
		[]string{"trigger", "outcome"}, // outcome: "published", "skipped", "canceled", "catalog_error"
	)

	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_refresh_duration_seconds",
			Help:    "Duration of feed composition cycles in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"trigger"},
	)

	FeedSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_items",
			Help: "Number of items in the published feed",
		},
	)

	FeedGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_generation",
			Help: "Generation number of the published feed",
		},
	)

	CatalogItemsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_catalog_items_dropped_total",
			Help: "Catalog items dropped during composition",
		},
		[]string{"reason"}, // "duplicate", "no_identity", "excluded"
	)

	// Ranking Metrics
	RankingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_requests_total",
			Help: "Total number of ranking requests by result",
		},
		[]string{"result"}, // "ranked", "fallback"
	)

	RankingFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_fallbacks_total",
			Help: "Total number of shuffle fallbacks by failure kind",
		},
		[]string{"kind"}, // "transport", "timeout", "malformed", "unavailable"
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_request_duration_seconds",
			Help:    "Duration of ranking service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Interaction Metrics
	InteractionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_mutations_total",
			Help: "Total number of interaction mutations that changed state",
		},
		[]string{"operation"}, // "like", "dislike", "save", "unsave", "progress", "restore"
	)

	PersistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_errors_total",
			Help: "Total number of storage write failures",
		},
		[]string{"key"},
	)

	StateRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persisted_state_repairs_total",
			Help: "Corrupt persisted entries discarded or repaired on load",
		},
		[]string{"key", "reason"},
	)

	// Catalog Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "catalog", "session"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CatalogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Duration of catalog source fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CatalogFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_fetch_errors_total",
			Help: "Total number of failed catalog fetches",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Playback Metrics
	PlaybackSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playback_sessions_active",
			Help: "Current number of live playback sessions",
		},
	)

	PlaybackTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_transitions_total",
			Help: "Total number of continuation decisions",
		},
		[]string{"kind", "decision"}, // decision: "advance", "repeat", "restart", "manual"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordRefresh records the outcome of one composition cycle.
func RecordRefresh(trigger, outcome string, duration time.Duration) {
	RefreshTotal.WithLabelValues(trigger, outcome).Inc()
	if outcome == "published" {
		RefreshDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	}
}

// RecordPublishedFeed updates the published feed gauges.
func RecordPublishedFeed(generation uint64, items int) {
	FeedGeneration.Set(float64(generation))
	FeedSize.Set(float64(items))
}

// RecordRanking records a ranking call. An empty kind means the ranking succeeded.
func RecordRanking(kind string, duration time.Duration) {
	RankingDuration.Observe(duration.Seconds())
	if kind == "" {
		RankingRequests.WithLabelValues("ranked").Inc()
		return
	}
	RankingRequests.WithLabelValues("fallback").Inc()
	RankingFallbacks.WithLabelValues(kind).Inc()
}

// RecordCatalogFetch records a catalog source fetch
func RecordCatalogFetch(duration time.Duration, err error) {
	CatalogFetchDuration.Observe(duration.Seconds())
	if err != nil {
		CatalogFetchErrors.Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
