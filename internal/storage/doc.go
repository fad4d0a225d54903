// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

// Package storage persists small key-value blobs for the engine.
//
// The interaction state and the admin exclusion list are each stored as a
// single JSON blob under their own key. Three backends are available:
//
//   - badger: embedded, durable across restarts (default)
//   - redis: shared, for deployments running several replicas
//   - memory: non-persistent, for development and tests
//
// Backends are selected with Open:
//
//	repo, err := storage.Open(storage.Config{Backend: storage.BackendBadger, Path: "/data/state"})
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
package storage
