// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/reelcast/internal/logging"
	"github.com/tomtom215/reelcast/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates when absent", "", false},
		{"keeps upstream id", "upstream-123", true},
		{"replaces oversized id", strings.Repeat("x", maxRequestIDLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ctxID, corrID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				corrID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != ctxID {
				t.Fatalf("header id %q, context id %q", got, ctxID)
			}
			if (got == tt.incoming) != tt.keep {
				t.Errorf("id = %q, keep upstream = %v", got, tt.keep)
			}
			if corrID == "" {
				t.Error("correlation id missing from context")
			}
		})
	}
}

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	t.Parallel()
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/things/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("route counter grew by %v, want 3", got)
	}
}

func TestRoutePatternUnmatched(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := RoutePattern(req); got != unmatchedRoute {
		t.Errorf("RoutePattern() = %q, want %q", got, unmatchedRoute)
	}
}

func TestStatusWriterKeepsFirstStatus(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	sw.WriteHeader(http.StatusNotFound)
	sw.WriteHeader(http.StatusInternalServerError)
	if sw.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", sw.status)
	}
	if _, _, err := sw.Hijack(); err == nil {
		t.Error("Hijack() on a recorder should fail")
	}
}

func TestAccessLogPassesThrough(t *testing.T) {
	t.Parallel()
	h := RequestID(AccessLog(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}

func TestPerformanceMonitorWindow(t *testing.T) {
	t.Parallel()
	pm := NewPerformanceMonitor(3)
	for i := int64(1); i <= 5; i++ {
		pm.RecordRequest(RequestMetrics{Route: "/feed", Method: http.MethodGet, DurationMS: i * 10, StatusCode: http.StatusOK})
	}

	recent := pm.GetRecentMetrics(10)
	if len(recent) != 3 || recent[0].DurationMS != 30 || recent[2].DurationMS != 50 {
		t.Fatalf("window = %+v, want durations 30..50", recent)
	}
	if got := pm.GetRecentMetrics(0); len(got) != 0 {
		t.Errorf("GetRecentMetrics(0) = %v", got)
	}
}

func TestPerformanceMonitorStats(t *testing.T) {
	t.Parallel()
	pm := NewPerformanceMonitor(0)

	for _, d := range []int64{10, 20, 30, 40} {
		pm.RecordRequest(RequestMetrics{Route: "/feed", Method: http.MethodGet, DurationMS: d, StatusCode: http.StatusOK})
	}
	pm.RecordRequest(RequestMetrics{Route: "/feed/refresh", Method: http.MethodPost, DurationMS: 100, StatusCode: http.StatusInternalServerError})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("GetStats() = %+v, want 2 endpoints", stats)
	}
	feed := stats[0]
	if feed.Endpoint != "GET /feed" || feed.RequestCount != 4 || feed.AvgDuration != 25 || feed.MaxDuration != 40 {
		t.Errorf("feed stats = %+v", feed)
	}
	if feed.P50Duration != 20 {
		t.Errorf("P50 = %d, want 20", feed.P50Duration)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("refresh errors = %d, want 1", stats[1].ErrorCount)
	}
}

func TestPerformanceMonitorMiddleware(t *testing.T) {
	t.Parallel()
	pm := NewPerformanceMonitor(10)
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/feed", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/feed", nil))

	recent := pm.GetRecentMetrics(1)
	if len(recent) != 1 || recent[0].Route != "/feed" || recent[0].StatusCode != http.StatusOK {
		t.Errorf("recorded %+v", recent)
	}
}
