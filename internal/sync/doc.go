// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package sync imports popular movies from TMDB into the catalog.

A run:
 1. loads the TMDB genre map (cached under tmdb:genres, 24h by default)
 2. walks /movie/popular from page 1 up to min(total_pages, SYNC_MAX_PAGES)
 3. inserts every result whose tmdbId is not stored yet, skipping the rest
 4. logs and records the counts (pages, inserted, skipped)
 5. invalidates the movie list cache when anything was inserted

Runs are triggered by the cron schedule (SYNC_SCHEDULE, default @daily), once at
startup when SYNC_ON_STARTUP is set, or manually through POST /api/v1/sync/tmdb.
Only one run executes at a time; a second trigger gets ErrSyncRunning.

Manager implements Start(ctx)/Stop() and is supervised by
supervisor/services.SyncService.
*/
package sync
