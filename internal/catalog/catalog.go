// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

// Package catalog fetches the raw content catalog that feeds are composed from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/metrics"
	"github.com/tomtom215/reelcast/internal/models"
)

// maxCatalogBytes bounds one catalog response body.
const maxCatalogBytes = 32 << 20

// Source provides the current catalog.
type Source interface {
	Fetch(ctx context.Context) ([]models.ContentItem, error)
}

// Purger is implemented by sources with a transport cache.
type Purger interface {
	Purge()
}

// Static is a fixed in-memory catalog.
type Static []models.ContentItem

// Fetch returns a copy of the catalog.
func (s Static) Fetch(context.Context) ([]models.ContentItem, error) {
	return append([]models.ContentItem(nil), s...), nil
}

// LoadFile reads a catalog payload from disk into a Static source.
func LoadFile(path string) (Static, error) {
	body, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	items, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return Static(items), nil
}

// Config configures the HTTP catalog source.
type Config struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration

	// CacheMaxBytes bounds the cached response bodies.
	CacheMaxBytes int64
}

// HTTPSource fetches the catalog over HTTP and caches the response body.
type HTTPSource struct {
	url    string
	http   *http.Client
	cache  *ristretto.Cache[string, []byte]
	ttl    time.Duration
	logger zerolog.Logger
}

// NewHTTPSource creates an HTTP catalog source. A non-positive CacheTTL
// disables caching.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPSource(cfg Config, logger zerolog.Logger) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, errors.New("catalog url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheMaxBytes <= 0 {
		cfg.CacheMaxBytes = 64 << 20
	}

	s := &HTTPSource{
		url:    cfg.URL,
		http:   &http.Client{Timeout: cfg.Timeout},
		ttl:    cfg.CacheTTL,
		logger: logger.With().Str("component", "catalog").Logger(),
	}

	if cfg.CacheTTL > 0 {
		c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: 1000,
			MaxCost:     cfg.CacheMaxBytes,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("create catalog cache: %w", err)
		}
		s.cache = c
	}

	return s, nil
}

// Fetch returns the catalog, from cache when a fresh body is held.
func (s *HTTPSource) Fetch(ctx context.Context) ([]models.ContentItem, error) {
	if s.cache != nil {
		if body, ok := s.cache.Get(s.url); ok {
			metrics.CacheHits.WithLabelValues("catalog").Inc()
			return Decode(body)
		}
		metrics.CacheMisses.WithLabelValues("catalog").Inc()
	}

	start := time.Now()
	body, err := s.get(ctx)
	metrics.RecordCatalogFetch(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	items, err := Decode(body)
	if err != nil {
		metrics.CatalogFetchErrors.Inc()
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetWithTTL(s.url, body, int64(len(body)), s.ttl)
		s.cache.Wait()
	}

	s.logger.Debug().Int("items", len(items)).Dur("duration", time.Since(start)).Msg("Catalog fetched")
	return items, nil
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return body, nil
}

// Purge drops the cached catalog body.
func (s *HTTPSource) Purge() {
	if s.cache == nil {
		return
	}
	s.cache.Clear()
	s.logger.Debug().Msg("Catalog cache purged")
}

// Close releases the cache.
func (s *HTTPSource) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Decode parses a catalog payload: a JSON array of items or an object with
// an "items" array.
func Decode(body []byte) ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := json.Unmarshal(body, &items); err == nil && items != nil {
		return items, nil
	}

	var wrapped struct {
		Items []models.ContentItem `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if wrapped.Items == nil {
		return nil, errors.New("decode catalog: no item list")
	}
	return wrapped.Items, nil
}
