// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/testinfra"
)

func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rc, err := testinfra.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start redis: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, rc.Container)

	s, err := NewRedisStore(ctx, RedisOptions{Addr: rc.Addr(), DefaultTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}

	for i := 0; i < 1200; i++ {
		if err := s.Set(ctx, fmt.Sprintf("%s%d", PrefixMovieList, i), []byte("x"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	_ = s.Set(ctx, MovieItemKey("keep"), []byte("x"), 0)

	n, err := s.DeletePrefix(ctx, PrefixMovieList)
	if err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if n != 1200 {
		t.Errorf("DeletePrefix removed %d, want 1200", n)
	}
	if _, ok, _ := s.Get(ctx, MovieItemKey("keep")); !ok {
		t.Error("item key should survive")
	}

	_ = s.Set(ctx, "ttl", []byte("x"), time.Second)
	time.Sleep(1500 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "ttl"); ok {
		t.Error("Expected ttl key to expire")
	}
}
