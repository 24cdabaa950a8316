// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func setupBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open in-memory badger: %v", err)
	}
	s := NewBadgerStoreFromDB(db, time.Minute)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := setupBadgerStore(t)

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = %v, %v", ok, err)
	}
	if string(got) != "v" {
		t.Errorf("got %q, want v", got)
	}
}

func TestBadgerStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := setupBadgerStore(t)

	// Badger TTL has one-second resolution.
	if err := s.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2100 * time.Millisecond)

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Expected key to expire")
	}
}

func TestBadgerStoreDeletePrefix(t *testing.T) {
	ctx := context.Background()
	s := setupBadgerStore(t)

	for i := 0; i < 25; i++ {
		_ = s.Set(ctx, fmt.Sprintf("%s%02d", PrefixMovieList, i), []byte("x"), 0)
	}
	_ = s.Set(ctx, KeyTMDBGenres, []byte("{}"), 0)

	n, err := s.DeletePrefix(ctx, PrefixMovieList)
	if err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if n != 25 {
		t.Errorf("DeletePrefix removed %d, want 25", n)
	}
	if _, ok, _ := s.Get(ctx, PrefixMovieList+"00"); ok {
		t.Error("list key survived DeletePrefix")
	}
	if _, ok, _ := s.Get(ctx, KeyTMDBGenres); !ok {
		t.Error("unrelated key was removed")
	}

	n, err = s.DeletePrefix(ctx, PrefixMovieList)
	if err != nil || n != 0 {
		t.Errorf("second DeletePrefix = %d, %v; want 0, nil", n, err)
	}
}

func TestBadgerStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := setupBadgerStore(t)

	_ = s.Set(ctx, "a", []byte("1"), 0)
	if err := s.Delete(ctx, "a", "never-set"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("Expected a to be deleted")
	}
}

func TestBadgerStoreRunGCInMemory(t *testing.T) {
	s := setupBadgerStore(t)
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC() = %v, want nil", err)
	}
}
