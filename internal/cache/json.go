// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/metrics"
)

// GetJSON decodes the value at key into dst. cacheType labels the hit/miss metrics.
// An undecodable value is dropped and reported as a miss.
func GetJSON(ctx context.Context, s Store, cacheType, key string, dst interface{}) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheError(s.Name(), "get")
		return false, err
	}
	if !ok {
		metrics.RecordCacheLookup(cacheType, false)
		return false, nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		metrics.RecordCacheError(s.Name(), "decode")
		metrics.RecordCacheLookup(cacheType, false)
		_ = s.Delete(ctx, key)
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}

	metrics.RecordCacheLookup(cacheType, true)
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data, ttl); err != nil {
		metrics.RecordCacheError(s.Name(), "set")
		return err
	}
	return nil
}

// Invalidate drops every key under prefix plus the listed keys and records how
// many were removed.
func Invalidate(ctx context.Context, s Store, prefix string, keys ...string) error {
	n := 0
	if prefix != "" {
		dropped, err := s.DeletePrefix(ctx, prefix)
		n += dropped
		if err != nil {
			metrics.RecordCacheError(s.Name(), "delete_prefix")
			metrics.RecordCacheInvalidation(s.Name(), n)
			return err
		}
	}
	if len(keys) > 0 {
		if err := s.Delete(ctx, keys...); err != nil {
			metrics.RecordCacheError(s.Name(), "delete")
			metrics.RecordCacheInvalidation(s.Name(), n)
			return err
		}
		n += len(keys)
	}
	metrics.RecordCacheInvalidation(s.Name(), n)
	return nil
}
