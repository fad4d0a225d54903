// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package ranking

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/models"
	"github.com/tomtom215/reelcast/internal/storage"
)

func testCatalog() []models.ContentItem {
	return []models.ContentItem{
		{ID: "A", Title: "Attic", Category: "haunting", Kind: models.KindShort},
		{ID: "B", Title: "Basement", Category: "slasher", Kind: models.KindLong},
		{AlternateID: "pub-C", Title: "Cellar", Category: "haunting", Kind: models.KindShort},
	}
}

func testSnapshot(t *testing.T) *interaction.Snapshot {
	t.Helper()
	ctx := context.Background()
	s, err := interaction.Load(ctx, storage.NewMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("interaction.Load() error = %v", err)
	}
	_ = s.Like(ctx, "A")
	_ = s.RecordProgress(ctx, "pub-C", 0.4)
	return s.Snapshot()
}

func TestResult_OrElse(t *testing.T) {
	t.Parallel()

	called := false
	fallback := func() []string {
		called = true
		return []string{"fallback"}
	}

	got := Ranked([]string{"x", "y"}).OrElse(fallback)
	if called || len(got) != 2 || got[0] != "x" {
		t.Errorf("Ranked.OrElse() = %v, fallback called = %v", got, called)
	}

	failed := Failed(KindTimeout, context.DeadlineExceeded)
	got = failed.OrElse(fallback)
	if !called || len(got) != 1 || got[0] != "fallback" {
		t.Errorf("Failed.OrElse() = %v, fallback called = %v", got, called)
	}
	if failed.OK() || failed.IDs() != nil || failed.Kind() != KindTimeout {
		t.Errorf("failed result exposes ids or wrong kind: %+v", failed)
	}
	if !errors.Is(failed.Err(), context.DeadlineExceeded) {
		t.Errorf("Err() = %v, want wrapped deadline", failed.Err())
	}
	if Ranked(nil).Err() != nil {
		t.Error("successful result should have nil error")
	}
}

func TestFallback_Totality(t *testing.T) {
	t.Parallel()

	for seed := int64(0); seed < 25; seed++ {
		ids := []string{"a", "b", "c", "d", "e", "f"}
		got := Fallback(ids, rand.New(rand.NewSource(seed))) //nolint:gosec // test determinism

		if len(got) != len(ids) {
			t.Fatalf("seed %d: len = %d, want %d", seed, len(got), len(ids))
		}
		sorted := append([]string(nil), got...)
		sort.Strings(sorted)
		for i := range ids {
			if sorted[i] != ids[i] {
				t.Fatalf("seed %d: Fallback() = %v is not a permutation", seed, got)
			}
		}
	}
}

func TestFallback_Empty(t *testing.T) {
	t.Parallel()
	if got := Fallback(nil, rand.New(rand.NewSource(1))); len(got) != 0 { //nolint:gosec // test determinism
		t.Errorf("Fallback(nil) = %v", got)
	}
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	req := BuildRequest(testCatalog(), testSnapshot(t))
	if len(req.Items) != 3 || req.Items[2].ID != "pub-C" {
		t.Errorf("Items = %+v", req.Items)
	}
	if len(req.HistoryTitles) != 1 || req.HistoryTitles[0] != "Cellar" {
		t.Errorf("HistoryTitles = %v, want [Cellar]", req.HistoryTitles)
	}
	if len(req.LikedIDs) != 1 || req.LikedIDs[0] != "A" {
		t.Errorf("LikedIDs = %v, want [A]", req.LikedIDs)
	}

	empty := BuildRequest(nil, nil)
	data, _ := json.Marshal(empty)
	if string(data) != `{"items":[],"historyTitles":[],"likedIds":[]}` {
		t.Errorf("empty request = %s", data)
	}
}

func TestNew_Unconfigured(t *testing.T) {
	t.Parallel()

	r := New(Config{}, zerolog.Nop())
	res := r.Rank(context.Background(), testCatalog(), nil)
	if res.OK() || res.Kind() != KindUnavailable {
		t.Errorf("Rank() = %+v, want unavailable", res)
	}
}

func TestClient_Rank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind FailureKind
		wantIDs  []string
	}{
		{"array", http.StatusOK, `["C","A"]`, "", []string{"C", "A"}},
		{"object", http.StatusOK, `{"ids":["B"]}`, "", []string{"B"}},
		{"empty array", http.StatusOK, `[]`, "", []string{}},
		{"numbers", http.StatusOK, `[1,2]`, KindMalformed, nil},
		{"object without ids", http.StatusOK, `{"order":["A"]}`, KindMalformed, nil},
		{"not json", http.StatusOK, `rank: A, B`, KindMalformed, nil},
		{"null", http.StatusOK, `null`, KindMalformed, nil},
		{"server error", http.StatusInternalServerError, `oops`, KindTransport, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(Config{URL: srv.URL, Timeout: time.Second}, zerolog.Nop())
			res := c.Rank(context.Background(), testCatalog(), nil)

			if res.Kind() != tt.wantKind {
				t.Fatalf("Kind() = %q, want %q (err %v)", res.Kind(), tt.wantKind, res.Err())
			}
			if tt.wantKind == "" {
				got := res.IDs()
				if len(got) != len(tt.wantIDs) {
					t.Fatalf("IDs() = %v, want %v", got, tt.wantIDs)
				}
				for i := range got {
					if got[i] != tt.wantIDs[i] {
						t.Errorf("IDs()[%d] = %s, want %s", i, got[i], tt.wantIDs[i])
					}
				}
			}
		})
	}
}

func TestClient_SendsRequest(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		gotAuth string
		gotReq  Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, APIKey: "secret"}, zerolog.Nop())
	if res := c.Rank(context.Background(), testCatalog(), testSnapshot(t)); !res.OK() {
		t.Fatalf("Rank() error = %v", res.Err())
	}

	mu.Lock()
	defer mu.Unlock()
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotReq.Items) != 3 || len(gotReq.LikedIDs) != 1 {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	res := c.Rank(context.Background(), testCatalog(), nil)
	if res.Kind() != KindTimeout {
		t.Errorf("Kind() = %q, want timeout (err %v)", res.Kind(), res.Err())
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{URL: url, Timeout: time.Second}, zerolog.Nop())
	res := c.Rank(context.Background(), testCatalog(), nil)
	if res.Kind() != KindTransport {
		t.Errorf("Kind() = %q, want transport (err %v)", res.Kind(), res.Err())
	}
}

func TestClient_BreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: time.Second, BreakerTimeout: time.Hour}, zerolog.Nop())
	for i := 0; i < 10; i++ {
		if res := c.Rank(context.Background(), testCatalog(), nil); res.Kind() != KindTransport {
			t.Fatalf("call %d: Kind() = %q, want transport", i, res.Kind())
		}
	}

	if state := c.Breaker(); state != "open" {
		t.Fatalf("Breaker() = %q, want open", state)
	}

	res := c.Rank(context.Background(), testCatalog(), nil)
	if res.Kind() != KindUnavailable {
		t.Errorf("Kind() with open circuit = %q, want unavailable", res.Kind())
	}
	if n := calls.Load(); n != 10 {
		t.Errorf("server calls = %d, want 10", n)
	}
}

func TestClient_RateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `["A"]`)
	}))
	defer srv.Close()

	// One call per minute: the second call cannot get a token before its deadline.
	c := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond, RateLimit: 1.0 / 60, Burst: 1}, zerolog.Nop())
	if res := c.Rank(context.Background(), testCatalog(), nil); !res.OK() {
		t.Fatalf("first Rank() error = %v", res.Err())
	}
	res := c.Rank(context.Background(), testCatalog(), nil)
	if res.Kind() != KindUnavailable || !strings.Contains(res.Err().Error(), "rate limited") {
		t.Errorf("second Rank() = %v, want rate limited", res.Err())
	}
}

func TestRankerFunc(t *testing.T) {
	t.Parallel()

	var r Ranker = RankerFunc(func(context.Context, []models.ContentItem, *interaction.Snapshot) Result {
		return Ranked([]string{"z"})
	})
	if ids := r.Rank(context.Background(), nil, nil).IDs(); len(ids) != 1 || ids[0] != "z" {
		t.Errorf("IDs() = %v", ids)
	}
}
