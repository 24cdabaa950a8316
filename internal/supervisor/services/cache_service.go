// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// GarbageCollector is satisfied by *cache.BadgerStore.
type GarbageCollector interface {
	RunGC() error
}

// CacheGCService runs value-log garbage collection on a fixed interval.
type CacheGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewCacheGCService creates the service. interval defaults to 10 minutes.
func NewCacheGCService(gc GarbageCollector, interval time.Duration) *CacheGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheGCService{
		gc:       gc,
		interval: interval,
		name:     "cache-gc",
	}
}

// Serve implements suture.Service. GC errors are logged; they never stop
// the loop.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.gc.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Cache value log GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Cache value log GC completed")
		}
	}
}

// String names the service in supervisor logs.
func (s *CacheGCService) String() string {
	return s.name
}
