// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package tmdb is a small client for The Movie Database (TMDB) v3 API.

Only the two endpoints the catalog import needs are implemented:

	GET {base}/genre/movie/list?api_key=KEY
	GET {base}/movie/popular?api_key=KEY&page=N

Resilience:
  - Client-side token bucket (golang.org/x/time/rate), TMDB_REQUESTS_PER_SECOND
  - HTTP 429 handling with exponential backoff (1s, 2s, 4s, 8s, 16s), honoring Retry-After
  - Circuit breaker (sony/gobreaker): opens at >=60% failures over >=10 requests,
    half-opens after 2 minutes

Every request is recorded in the tmdb_requests_total and
tmdb_request_duration_seconds metrics. The API key never appears in logs or
returned errors.
*/
package tmdb
