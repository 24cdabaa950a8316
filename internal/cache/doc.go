// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides the response cache shared by the movie endpoints and the
TMDB sync.

# Overview

Store is a byte-oriented key/value interface with per-entry TTL and prefix
invalidation. Three backends implement it:

  - MemoryStore: in-process LRU with TTL (default)
  - RedisStore: go-redis v9, shared across replicas
  - BadgerStore: embedded Badger v4, survives restarts on a single node

The backend is chosen by CACHE_BACKEND (memory, redis, badger) and built by New.

# Keys

Callers namespace keys with a prefix so whole families can be dropped at once:

	movies:list:<hash>   paged list results (GenerateKey over the normalized query)
	movies:item:<id>     single movie
	tmdb:genres          TMDB genre id to name map

# Typed Access

GetJSON and SetJSON wrap a Store with goccy/go-json encoding and record hit,
miss and error metrics per logical cache:

	var page models.MoviePage
	ok, err := cache.GetJSON(ctx, store, "movies_list", key, &page)

# Failure Semantics

Cache errors never fail a request. Callers log them and fall back to the
database; invalidation is best effort and stale entries age out via TTL.
*/
package cache
