// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/feed"
)

type refreshCall struct {
	trigger feed.Trigger
	hard    bool
}

// mockRefresher records calls. A non-nil err fails every call.
type mockRefresher struct {
	mu    sync.Mutex
	calls []refreshCall
	err   error
	gen   uint64
}

func (m *mockRefresher) Refresh(_ context.Context, trigger feed.Trigger, hard bool) (*feed.Composition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, refreshCall{trigger, hard})
	if m.err != nil {
		return nil, m.err
	}
	m.gen++
	return &feed.Composition{Generation: m.gen, Trigger: trigger, Hard: hard}, nil
}

func (m *mockRefresher) snapshot() []refreshCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]refreshCall(nil), m.calls...)
}

func waitForCalls(t *testing.T, m *mockRefresher, n int) []refreshCall {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		calls := m.snapshot()
		if len(calls) >= n {
			return calls
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d refresh calls, want at least %d", len(calls), n)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestRefreshServiceStartupThenPeriodic(t *testing.T) {
	t.Parallel()
	m := &mockRefresher{}
	svc := NewRefreshService(m, RefreshServiceConfig{Interval: 10 * time.Millisecond, OnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	calls := waitForCalls(t, m, 3)
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}

	if calls[0] != (refreshCall{feed.TriggerStartup, true}) {
		t.Errorf("first call = %+v, want hard startup", calls[0])
	}
	for i, c := range calls[1:] {
		if c != (refreshCall{feed.TriggerPeriodic, false}) {
			t.Errorf("call %d = %+v, want non-hard periodic", i+1, c)
		}
	}
}

func TestRefreshServiceSkipsStartupWhenDisabled(t *testing.T) {
	t.Parallel()
	m := &mockRefresher{}
	svc := NewRefreshService(m, RefreshServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = svc.Serve(ctx)
		close(done)
	}()

	calls := waitForCalls(t, m, 1)
	cancel()
	<-done
	if calls[0].trigger != feed.TriggerPeriodic {
		t.Errorf("first call trigger = %q, want periodic", calls[0].trigger)
	}
}

func TestRefreshServiceSurvivesErrors(t *testing.T) {
	t.Parallel()
	for _, err := range []error{feed.ErrRefreshInProgress, errors.New("catalog down")} {
		m := &mockRefresher{err: err}
		svc := NewRefreshService(m, RefreshServiceConfig{Interval: 5 * time.Millisecond, OnStartup: true}, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitForCalls(t, m, 3)
		cancel()
		if got := <-errCh; !errors.Is(got, context.Canceled) {
			t.Errorf("Serve() with refresh error %v = %v, want context.Canceled", err, got)
		}
	}
}

func TestRefreshServiceStartupRunsOnce(t *testing.T) {
	t.Parallel()
	m := &mockRefresher{}
	svc := NewRefreshService(m, RefreshServiceConfig{Interval: time.Hour, OnStartup: true}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = svc.Serve(ctx)
			close(done)
		}()
		if i == 0 {
			waitForCalls(t, m, 1)
		} else {
			time.Sleep(20 * time.Millisecond)
		}
		cancel()
		<-done
	}

	if calls := m.snapshot(); len(calls) != 1 {
		t.Errorf("restarted service refreshed %d times, want 1", len(calls))
	}
}

func TestRefreshServiceDefaults(t *testing.T) {
	t.Parallel()
	svc := NewRefreshService(&mockRefresher{}, RefreshServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != 5*time.Minute {
		t.Errorf("Interval = %v, want 5m", svc.config.Interval)
	}
	if svc.String() != "refresh-service" {
		t.Errorf("String() = %q", svc.String())
	}
}
