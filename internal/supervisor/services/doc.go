// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package services adapts Marquee components to suture.Service:
//
//   - HTTPServerService: *http.Server (api layer)
//   - SyncService: the catalog sync manager's Start/Stop (jobs layer)
//   - CacheGCService: periodic Badger value-log GC (storage layer)
package services
