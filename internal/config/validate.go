// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate returns the first invalid setting.
func (c *Config) Validate() error {
	checks := []func() error{
		c.validateServer,
		c.validateAPI,
		c.validateStorage,
		c.validateCatalog,
		c.validateRanking,
		c.validateFeed,
		c.validateRefresh,
		c.validatePlayback,
		c.validateLogging,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if !c.API.RateLimitDisabled {
		if c.API.RateLimitReqs < 1 {
			return fmt.Errorf("api.rate_limit_reqs must be at least 1")
		}
		if c.API.RateLimitWindow <= 0 {
			return fmt.Errorf("api.rate_limit_window must be positive")
		}
	}
	if c.API.MaxBodyBytes < 1 {
		return fmt.Errorf("api.max_body_bytes must be positive")
	}
	if c.IsProduction() {
		for _, o := range c.API.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("api.cors_origins must not contain * in production")
			}
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the badger backend")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
		if c.Storage.RedisDB < 0 {
			return fmt.Errorf("storage.redis_db must not be negative")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be badger, redis or memory, got %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch {
	case c.Catalog.URL == "" && c.Catalog.File == "":
		return fmt.Errorf("catalog.url or catalog.file is required")
	case c.Catalog.URL != "" && c.Catalog.File != "":
		return fmt.Errorf("catalog.url and catalog.file are mutually exclusive")
	}
	if c.Catalog.URL != "" {
		if err := validateHTTPURL(c.Catalog.URL); err != nil {
			return fmt.Errorf("catalog.url is invalid: %w", err)
		}
		if c.Catalog.Timeout <= 0 {
			return fmt.Errorf("catalog.timeout must be positive")
		}
		if c.Catalog.CacheTTL > 0 && c.Catalog.CacheMaxBytes < 1 {
			return fmt.Errorf("catalog.cache_max_bytes must be positive when caching is enabled")
		}
	}
	return nil
}

func (c *Config) validateRanking() error {
	if c.Ranking.URL == "" {
		return nil
	}
	if err := validateHTTPURL(c.Ranking.URL); err != nil {
		return fmt.Errorf("ranking.url is invalid: %w", err)
	}
	if c.Ranking.Timeout <= 0 {
		return fmt.Errorf("ranking.timeout must be positive")
	}
	if c.Ranking.RateLimit < 0 {
		return fmt.Errorf("ranking.rate_limit must not be negative")
	}
	if c.Ranking.RateLimit > 0 && c.Ranking.Burst < 1 {
		return fmt.Errorf("ranking.burst must be at least 1 when rate limiting")
	}
	return nil
}

func (c *Config) validateFeed() error {
	return c.FeedOptions().Validate()
}

func (c *Config) validateRefresh() error {
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive")
	}
	// A cached catalog body that outlives the tick is served to the next
	// periodic cycle, which then recomposes stale content.
	if c.Catalog.URL != "" && c.Catalog.CacheTTL >= c.Refresh.Interval {
		return fmt.Errorf("catalog.cache_ttl (%s) must be shorter than refresh.interval (%s)",
			c.Catalog.CacheTTL, c.Refresh.Interval)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.IdleTTL <= 0 {
		return fmt.Errorf("playback.idle_ttl must be positive")
	}
	if c.Playback.LikedWeight < 0 {
		return fmt.Errorf("playback.liked_weight must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL accepts absolute http and https urls. Paths are allowed
// since both collaborators are addressed by endpoint url.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
