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

	"github.com/tomtom215/marquee/internal/config"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("cache store closed")

// Store is a TTL key/value cache.
type Store interface {
	// Get returns the value and true, or false when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. A non-positive ttl means the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix and returns how many were dropped.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg *config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(cfg.MaxEntries, cfg.TTL), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:       cfg.RedisAddr(),
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			DefaultTTL: cfg.TTL,
		})
	case BackendBadger:
		return NewBadgerStore(cfg.BadgerPath, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Verify interface implementations at compile time
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*BadgerStore)(nil)
)
