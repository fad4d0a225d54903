// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/reelcast/internal/catalog"
	"github.com/tomtom215/reelcast/internal/feed"
	"github.com/tomtom215/reelcast/internal/logging"
	"github.com/tomtom215/reelcast/internal/playback"
	"github.com/tomtom215/reelcast/internal/ranking"
	"github.com/tomtom215/reelcast/internal/storage"
)

// Config holds all application configuration.
//
// Loading order (see Load):
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/reelcast/config.yaml)
//  3. Environment variables, through an explicit name mapping
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Storage  StorageConfig  `koanf:"storage"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Ranking  RankingConfig  `koanf:"ranking"`
	Feed     FeedConfig     `koanf:"feed"`
	Refresh  RefreshConfig  `koanf:"refresh"`
	Playback PlaybackConfig `koanf:"playback"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig holds HTTP API limits.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
}

// StorageConfig selects where interaction state and admin exclusions live.
type StorageConfig struct {
	// Backend is badger, redis or memory.
	Backend       string `koanf:"backend"`
	Path          string `koanf:"path"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	KeyPrefix     string `koanf:"key_prefix"`
}

// CatalogConfig points at the content catalog. Exactly one of URL and File
// must be set.
type CatalogConfig struct {
	URL           string        `koanf:"url"`
	File          string        `koanf:"file"`
	Timeout       time.Duration `koanf:"timeout"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	CacheMaxBytes int64         `koanf:"cache_max_bytes"`
}

// RankingConfig configures the external ranking service. An empty URL
// leaves ranking disabled and every cycle uses the shuffle fallback.
type RankingConfig struct {
	URL            string        `koanf:"url"`
	APIKey         string        `koanf:"api_key"`
	Timeout        time.Duration `koanf:"timeout"`
	RateLimit      float64       `koanf:"rate_limit"`
	Burst          int           `koanf:"burst"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// FeedConfig holds composition and read-model settings.
type FeedConfig struct {
	HideInteracted     bool          `koanf:"hide_interacted"`
	CycleTimeout       time.Duration `koanf:"cycle_timeout"`
	SearchDefaultLimit int           `koanf:"search_default_limit"`
	SearchMaxLimit     int           `koanf:"search_max_limit"`
	Seed               int64         `koanf:"seed"`
}

// RefreshConfig holds the periodic refresh schedule.
type RefreshConfig struct {
	Interval  time.Duration `koanf:"interval"`
	OnStartup bool          `koanf:"on_startup"`
}

// PlaybackConfig holds session registry settings.
type PlaybackConfig struct {
	IdleTTL     time.Duration `koanf:"idle_ttl"`
	LikedWeight int           `koanf:"liked_weight"`
	Seed        int64         `koanf:"seed"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error. Default: info
	Level string `koanf:"level"`

	// Format is json or console. Default: json
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// LoggingOptions converts the logging section for logging.Init.
func (c *Config) LoggingOptions() logging.Config {
	opts := logging.DefaultConfig()
	opts.Level = c.Logging.Level
	opts.Format = c.Logging.Format
	opts.Caller = c.Logging.Caller
	return opts
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Config {
	return storage.Config{
		Backend:       storage.Backend(c.Storage.Backend),
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		KeyPrefix:     c.Storage.KeyPrefix,
	}
}

// CatalogOptions converts the catalog section for catalog.NewHTTPSource.
func (c *Config) CatalogOptions() catalog.Config {
	return catalog.Config{
		URL:           c.Catalog.URL,
		Timeout:       c.Catalog.Timeout,
		CacheTTL:      c.Catalog.CacheTTL,
		CacheMaxBytes: c.Catalog.CacheMaxBytes,
	}
}

// RankingOptions converts the ranking section for ranking.New.
func (c *Config) RankingOptions() ranking.Config {
	return ranking.Config{
		URL:            c.Ranking.URL,
		APIKey:         c.Ranking.APIKey,
		Timeout:        c.Ranking.Timeout,
		RateLimit:      c.Ranking.RateLimit,
		Burst:          c.Ranking.Burst,
		BreakerTimeout: c.Ranking.BreakerTimeout,
	}
}

// FeedOptions converts the feed section for feed.NewEngine.
func (c *Config) FeedOptions() *feed.Config {
	return &feed.Config{
		HideInteracted:     c.Feed.HideInteracted,
		CycleTimeout:       c.Feed.CycleTimeout,
		SearchDefaultLimit: c.Feed.SearchDefaultLimit,
		SearchMaxLimit:     c.Feed.SearchMaxLimit,
		Seed:               c.Feed.Seed,
	}
}

// PlaybackOptions converts the playback section for playback.NewRegistry.
func (c *Config) PlaybackOptions() playback.Config {
	return playback.Config{
		IdleTTL:     c.Playback.IdleTTL,
		LikedWeight: c.Playback.LikedWeight,
		Seed:        c.Playback.Seed,
	}
}
