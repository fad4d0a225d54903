// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger is a Repository backed by BadgerDB for durable storage.
type Badger struct {
	db     *badger.DB
	prefix string
	owned  bool
}

// OpenBadger opens (or creates) a BadgerDB directory at path.
// The returned repository owns the database and closes it on Close.
func OpenBadger(path, prefix string) (*Badger, error) {
	if path == "" {
		return nil, errors.New("badger path is required")
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	return &Badger{db: db, prefix: prefix, owned: true}, nil
}

// NewBadgerFromDB wraps an existing database. Close leaves db open.
func NewBadgerFromDB(db *badger.DB, prefix string) *Badger {
	return &Badger{db: db, prefix: prefix}
}

// Get retrieves the blob stored under key.
func (b *Badger) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(b.prefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Put stores value under key.
func (b *Badger) Put(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(b.prefix+key), value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

// Close closes the database if this repository opened it.
func (b *Badger) Close() error {
	if b.owned && b.db != nil {
		return b.db.Close()
	}
	return nil
}
