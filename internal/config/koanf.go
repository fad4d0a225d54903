// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelcast/config.yaml",
	"/etc/reelcast/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			MaxBodyBytes:    1 << 20,
		},
		Storage: StorageConfig{
			Backend:   "badger",
			Path:      "/data/reelcast",
			RedisAddr: "127.0.0.1:6379",
			KeyPrefix: "reelcast:",
		},
		Catalog: CatalogConfig{
			Timeout:       15 * time.Second,
			CacheTTL:      time.Minute,
			CacheMaxBytes: 64 << 20,
		},
		Ranking: RankingConfig{
			Timeout:        10 * time.Second,
			RateLimit:      1,
			Burst:          2,
			BreakerTimeout: time.Minute,
		},
		Feed: FeedConfig{
			HideInteracted:     true,
			CycleTimeout:       30 * time.Second,
			SearchDefaultLimit: 10,
			SearchMaxLimit:     100,
		},
		Refresh: RefreshConfig{
			Interval:  5 * time.Minute,
			OnStartup: true,
		},
		Playback: PlaybackConfig{
			IdleTTL:     30 * time.Minute,
			LikedWeight: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing priority, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}

		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"cors_origins":        "api.cors_origins",
	"rate_limit_requests": "api.rate_limit_reqs",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"api_max_body_bytes":  "api.max_body_bytes",

	"storage_backend":    "storage.backend",
	"storage_path":       "storage.path",
	"redis_addr":         "storage.redis_addr",
	"redis_password":     "storage.redis_password",
	"redis_db":           "storage.redis_db",
	"storage_key_prefix": "storage.key_prefix",

	"catalog_url":             "catalog.url",
	"catalog_file":            "catalog.file",
	"catalog_timeout":         "catalog.timeout",
	"catalog_cache_ttl":       "catalog.cache_ttl",
	"catalog_cache_max_bytes": "catalog.cache_max_bytes",

	"ranking_url":             "ranking.url",
	"ranking_api_key":         "ranking.api_key",
	"ranking_timeout":         "ranking.timeout",
	"ranking_rate_limit":      "ranking.rate_limit",
	"ranking_burst":           "ranking.burst",
	"ranking_breaker_timeout": "ranking.breaker_timeout",

	"feed_hide_interacted":      "feed.hide_interacted",
	"feed_cycle_timeout":        "feed.cycle_timeout",
	"feed_search_default_limit": "feed.search_default_limit",
	"feed_search_max_limit":     "feed.search_max_limit",
	"feed_seed":                 "feed.seed",

	"refresh_interval":   "refresh.interval",
	"refresh_on_startup": "refresh.on_startup",

	"playback_idle_ttl":     "playback.idle_ttl",
	"playback_liked_weight": "playback.liked_weight",
	"playback_seed":         "playback.seed",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns the config path for an environment variable, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
