// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package ranking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/models"
)

// maxResponseBytes bounds the ranking response body.
const maxResponseBytes = 8 << 20

// Config configures the HTTP ranking client.
type Config struct {
	// URL of the ranking endpoint. Empty disables ranking.
	URL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds each call.
	Timeout time.Duration

	// RateLimit is the sustained calls per second allowed. Zero disables limiting.
	RateLimit float64

	// Burst is the limiter bucket size.
	Burst int

	// BreakerTimeout is how long the circuit stays open before probing.
	BreakerTimeout time.Duration
}

// New returns the Ranker described by cfg. Without a URL every call fails
// with KindUnavailable.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) Ranker {
	if cfg.URL == "" {
		logger.Info().Str("component", "ranking").Msg("No ranking service configured, feeds use shuffle fallback")
		return Unavailable{}
	}
	return NewClient(cfg, logger)
}

// Client calls an HTTP ranking service.
type Client struct {
	url     string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker
	logger  zerolog.Logger
}

// NewClient creates an HTTP ranking client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 2 * time.Minute
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	log := logger.With().Str("component", "ranking").Logger()
	return &Client{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    &http.Client{},
		limiter: limiter,
		breaker: newBreaker("ranking-api", cfg.BreakerTimeout, log),
		logger:  log,
	}
}

// Rank requests an order for catalog. It never returns a partially ranked result.
func (c *Client) Rank(ctx context.Context, catalog []models.ContentItem, snap *interaction.Snapshot) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return Failed(KindUnavailable, fmt.Errorf("rate limited: %w", err))
	}

	body, err := json.Marshal(BuildRequest(catalog, snap))
	if err != nil {
		return Failed(KindMalformed, fmt.Errorf("encode request: %w", err))
	}

	ids, rejected, err := c.breaker.execute(func() ([]string, error) {
		return c.post(ctx, body)
	})
	if err == nil {
		c.logger.Debug().Int("ranked", len(ids)).Int("catalog", len(catalog)).Msg("Ranking received")
		return Ranked(ids)
	}
	if rejected {
		return Failed(KindUnavailable, err)
	}

	var re *RankingError
	if errors.As(err, &re) {
		return Result{err: re}
	}
	return Failed(KindTransport, err)
}

// Breaker returns the circuit state: closed, half-open or open.
func (c *Client) Breaker() string {
	return c.breaker.State()
}

// post performs one ranking request. Errors are always *RankingError.
func (c *Client) post(ctx context.Context, body []byte) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &RankingError{Kind: KindTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RankingError{Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &RankingError{Kind: KindTransport, Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RankingError{Kind: classify(err), Err: fmt.Errorf("read response: %w", err)}
	}

	ids, err := decodeOrder(data)
	if err != nil {
		return nil, &RankingError{Kind: KindMalformed, Err: err}
	}
	return ids, nil
}

// decodeOrder accepts a JSON array of strings or an object with an "ids" array.
func decodeOrder(data []byte) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil && ids != nil {
		return ids, nil
	}

	var wrapped struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode ranking response: %w", err)
	}
	if wrapped.IDs == nil {
		return nil, errors.New("ranking response has no id list")
	}
	return wrapped.IDs, nil
}

// classify maps a transport error to a failure kind.
func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
