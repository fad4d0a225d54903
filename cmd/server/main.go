// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/api"
	"github.com/tomtom215/reelcast/internal/catalog"
	"github.com/tomtom215/reelcast/internal/config"
	"github.com/tomtom215/reelcast/internal/exclusion"
	"github.com/tomtom215/reelcast/internal/feed"
	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/logging"
	"github.com/tomtom215/reelcast/internal/middleware"
	"github.com/tomtom215/reelcast/internal/playback"
	"github.com/tomtom215/reelcast/internal/ranking"
	"github.com/tomtom215/reelcast/internal/storage"
	"github.com/tomtom215/reelcast/internal/supervisor"
	"github.com/tomtom215/reelcast/internal/supervisor/services"
	ws "github.com/tomtom215/reelcast/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingOptions())
	logger := logging.Logger()

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("storage", cfg.Storage.Backend).
		Bool("ranking_enabled", cfg.Ranking.URL != "").
		Msg("Starting Reelcast")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()

	// A failed read here means the backend is unreachable; starting with
	// empty state would overwrite the stored history on the next mutation.
	interactions, err := interaction.Load(ctx, repo, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load interaction state")
	}
	exclusions, err := exclusion.Load(ctx, repo, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load admin exclusions")
	}

	source, closeSource, err := openCatalog(cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure catalog")
	}
	defer closeSource()

	engine, err := feed.NewEngine(
		cfg.FeedOptions(),
		source,
		ranking.New(cfg.RankingOptions(), logger),
		exclusions,
		interactions,
		logger,
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create feed engine")
	}

	sessions := playback.NewRegistry(cfg.PlaybackOptions(), logger)
	defer sessions.Close()

	hub := ws.NewHub(logger)

	engine.OnPublish(func(comp *feed.Composition) {
		hub.AnnounceComposition(comp)
		if _, layout, err := engine.Layout(); err == nil {
			if n := sessions.UpdateShortItems(layout.Shorts); n > 0 {
				logging.Debug().Int("sessions", n).Uint64("generation", comp.Generation).Msg("Short sessions moved to new feed")
			}
		}
	})

	handler := api.NewHandler(api.Deps{
		Engine:       engine,
		Interactions: interactions,
		Exclusions:   exclusions,
		Sessions:     sessions,
		Hub:          hub,
		PerfMon:      middleware.NewPerformanceMonitor(1000),
	}, logger)

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.API.CORSOrigins
	mwCfg.RateLimitRequests = cfg.API.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.API.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.API.RateLimitDisabled
	if cfg.API.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	router := api.NewRouter(handler, api.RouterConfig{
		Middleware:   mwCfg,
		MaxBodyBytes: cfg.API.MaxBodyBytes,
		WebSocket:    ws.NewHandler(hub, cfg.API.CORSOrigins),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddCoreService(services.NewWebSocketHubService(hub))
	tree.AddCoreService(services.NewRefreshService(engine, services.RefreshServiceConfig{
		Interval:  cfg.Refresh.Interval,
		OnStartup: cfg.Refresh.OnStartup,
	}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// openCatalog returns the configured catalog source and a function that
// releases it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openCatalog(cfg *config.Config, logger zerolog.Logger) (catalog.Source, func(), error) {
	if cfg.Catalog.File != "" {
		items, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("file", cfg.Catalog.File).Int("items", len(items)).Msg("Catalog loaded from file")
		return items, func() {}, nil
	}

	src, err := catalog.NewHTTPSource(cfg.CatalogOptions(), logger)
	if err != nil {
		return nil, nil, err
	}
	logging.Info().Str("url", cfg.Catalog.URL).Msg("Catalog served from HTTP source")
	return src, src.Close, nil
}
