// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/feed"
)

// Refresher is satisfied by *feed.Engine.
type Refresher interface {
	Refresh(ctx context.Context, trigger feed.Trigger, hard bool) (*feed.Composition, error)
}

// RefreshServiceConfig holds the refresh schedule.
type RefreshServiceConfig struct {
	// Interval between periodic refreshes. Default: 5m
	Interval time.Duration

	// OnStartup runs a hard refresh before the first tick.
	OnStartup bool
}

// RefreshService drives periodic feed composition.
type RefreshService struct {
	engine Refresher
	config RefreshServiceConfig
	logger zerolog.Logger
	name   string

	// startupDone survives restarts so a crashed service does not purge the
	// catalog cache again.
	startupDone bool
}

// NewRefreshService creates the refresh scheduler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(engine Refresher, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &RefreshService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "refresh").Logger(),
		name:   "refresh-service",
	}
}

// Serve implements suture.Service. Cycle failures are logged and retried
// on the next tick; they never stop the service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("refresh service starting")

	if s.config.OnStartup && !s.startupDone {
		s.startupDone = true
		s.refresh(ctx, feed.TriggerStartup, true)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("refresh service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx, feed.TriggerPeriodic, false)
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context, trigger feed.Trigger, hard bool) {
	comp, err := s.engine.Refresh(ctx, trigger, hard)
	switch {
	case err == nil:
		s.logger.Debug().
			Str("trigger", string(trigger)).
			Uint64("generation", comp.Generation).
			Msg("scheduled refresh published")
	case errors.Is(err, feed.ErrRefreshInProgress):
		s.logger.Debug().Str("trigger", string(trigger)).Msg("refresh skipped, cycle in flight")
	case errors.Is(err, feed.ErrRefreshCanceled), ctx.Err() != nil:
		s.logger.Debug().Err(err).Str("trigger", string(trigger)).Msg("refresh canceled")
	default:
		s.logger.Warn().Err(err).Str("trigger", string(trigger)).Msg("scheduled refresh failed, keeping previous feed")
	}
}

func (s *RefreshService) String() string {
	return s.name
}
