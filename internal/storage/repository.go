// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Well-known keys.
const (
	KeyInteractionState = "interactions:state"
	KeyAdminExclusions  = "admin:exclusions"
)

// Repository stores opaque blobs by key.
type Repository interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the backend.
	Close() error
}

// Backend names a Repository implementation.
type Backend string

const (
	// BackendBadger uses an embedded BadgerDB directory.
	BackendBadger Backend = "badger"

	// BackendRedis uses a Redis server.
	BackendRedis Backend = "redis"

	// BackendMemory keeps blobs in process memory only.
	BackendMemory Backend = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend

	// Path is the BadgerDB directory.
	Path string

	// RedisAddr, RedisPassword and RedisDB configure the Redis client.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// KeyPrefix namespaces keys in shared backends.
	KeyPrefix string
}

// Open creates the Repository described by cfg.
func Open(cfg Config) (Repository, error) {
	switch cfg.Backend {
	case BackendBadger:
		return OpenBadger(cfg.Path, cfg.KeyPrefix)
	case BackendRedis:
		return NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
	case BackendMemory, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
