// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Badger is a persistent cache backed by an embedded BadgerDB. Entry
// expiry uses Badger's native TTL.
type Badger struct {
	db *badger.DB
}

var _ Backend = (*Badger)(nil)

var errBadgerClosed = errors.New("badger cache is closed")

// NewBadger opens a database at path. An empty path opens an in-memory
// database.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &Badger{db: db}, nil
}

// NewBadgerFromDB wraps an already-open database.
func NewBadgerFromDB(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Get returns a copy of the value under key.
func (b *Badger) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, recommend.CacheError("badger get "+key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// SetWithTTL stores value under key. A non-positive ttl never expires.
func (b *Badger) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return recommend.CacheError("badger set "+key, err)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
func (b *Badger) DeleteByPrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.db.DropPrefix([]byte(prefix)); err != nil {
		return recommend.CacheError("badger drop prefix "+prefix, err)
	}
	return nil
}

// Keys lists live keys with the given prefix.
func (b *Badger) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, recommend.CacheError("badger list "+prefix, err)
	}
	return keys, nil
}

// Ping reports whether the database is open.
func (b *Badger) Ping(context.Context) error {
	if b.db.IsClosed() {
		return recommend.CacheError("badger ping", errBadgerClosed)
	}
	return nil
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}
