// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/config"
)

func TestNewBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := New(ctx, &config.CacheConfig{Backend: BackendMemory, TTL: time.Minute, MaxEntries: 5})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer s.Close()
		if s.Name() != BackendMemory {
			t.Errorf("Name() = %s", s.Name())
		}
	})

	t.Run("badger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache")
		s, err := New(ctx, &config.CacheConfig{Backend: BackendBadger, TTL: time.Minute, BadgerPath: path})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer s.Close()
		if s.Name() != BackendBadger {
			t.Errorf("Name() = %s", s.Name())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := New(ctx, &config.CacheConfig{Backend: "memcached"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
