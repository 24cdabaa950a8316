// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	// gcDiscardRatio is passed to RunValueLogGC.
	gcDiscardRatio = 0.5

	deleteChunk = 1000
)

// BadgerStore is a Store backed by an embedded Badger database.
// Expiry uses Badger's native entry TTL.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore opens (or creates) a database at path.
func NewBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return NewBadgerStoreFromDB(db, ttl), nil
}

// NewBadgerStoreFromDB wraps an already open database, e.g. an in-memory one in tests.
func NewBadgerStoreFromDB(db *badger.DB, ttl time.Duration) *BadgerStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BadgerStore{db: db, ttl: ttl}
}

// Name implements Store.
func (s *BadgerStore) Name() string { return BackendBadger }

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return val, true, nil
}

// Set implements Store.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

// DeletePrefix implements Store. Keys are collected in a read transaction and
// deleted in chunks so large families stay under Badger's txn size limit.
func (s *BadgerStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	for start := 0; start < len(keys); start += deleteChunk {
		end := min(start+deleteChunk, len(keys))
		if err := s.Delete(ctx, keysToStrings(keys[start:end])...); err != nil {
			return start, err
		}
	}
	return len(keys), nil
}

// RunGC reclaims value log space. badger.ErrNoRewrite means there was nothing
// to collect and is not reported.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(gcDiscardRatio)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) &&
		!errors.Is(err, badger.ErrGCInMemoryMode) {
		return fmt.Errorf("badger value log gc: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func keysToStrings(keys [][]byte) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
