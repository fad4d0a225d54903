// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package catalog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/models"
)

const payload = `[
	{"id":"A","type":"short","title":"Attic","category":"haunting","video_url":"https://cdn.example/a.mp4"},
	{"public_id":"pub-B","type":"long","title":"Basement","category":"slasher"}
]`

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"array", payload, 2, false},
		{"wrapped", `{"items":` + payload + `}`, 2, false},
		{"empty array", `[]`, 0, false},
		{"object without items", `{"videos":[]}`, 0, true},
		{"garbage", `<html>`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDecode_Fields(t *testing.T) {
	t.Parallel()

	items, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if items[0].Kind != models.KindShort || items[0].MediaURL != "https://cdn.example/a.mp4" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Kind != models.KindLong || models.IdentityOf(items[1]) != "pub-B" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func newCountingServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestHTTPSource_CachesAndPurges(t *testing.T) {
	t.Parallel()
	srv, hits := newCountingServer(t, payload, http.StatusOK)

	src, err := NewHTTPSource(Config{URL: srv.URL, CacheTTL: time.Minute}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPSource() error = %v", err)
	}
	defer src.Close()

	for i := 0; i < 3; i++ {
		items, err := src.Fetch(context.Background())
		if err != nil || len(items) != 2 {
			t.Fatalf("Fetch() = %d items, %v", len(items), err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1 (cached)", n)
	}

	src.Purge()
	if _, err := src.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() after purge error = %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits after purge = %d, want 2", n)
	}
}

func TestHTTPSource_NoCache(t *testing.T) {
	t.Parallel()
	srv, hits := newCountingServer(t, payload, http.StatusOK)

	src, err := NewHTTPSource(Config{URL: srv.URL}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPSource() error = %v", err)
	}
	_, _ = src.Fetch(context.Background())
	_, _ = src.Fetch(context.Background())
	src.Purge()

	if n := hits.Load(); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}

func TestHTTPSource_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"server error", `{}`, http.StatusInternalServerError},
		{"malformed", `{"nope":1}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := newCountingServer(t, tt.body, tt.status)

			src, err := NewHTTPSource(Config{URL: srv.URL, CacheTTL: time.Minute}, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewHTTPSource() error = %v", err)
			}
			defer src.Close()

			if _, err := src.Fetch(context.Background()); err == nil {
				t.Error("Fetch() should fail")
			}
		})
	}
}

func TestNewHTTPSource_RequiresURL(t *testing.T) {
	t.Parallel()
	if _, err := NewHTTPSource(Config{}, zerolog.Nop()); err == nil {
		t.Error("NewHTTPSource() without url should fail")
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()
	s := Static{{ID: "a"}}
	got, _ := s.Fetch(context.Background())
	got[0].ID = "mutated"
	if s[0].ID != "a" {
		t.Error("Static.Fetch() should return a copy")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	good := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(good, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}
	src, err := LoadFile(good)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(src) != 2 {
		t.Fatalf("LoadFile() gave %d items, want 2", len(src))
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("LoadFile() of malformed payload succeeded")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadFile() of missing file succeeded")
	}
}
