// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package testinfra provides containers and fake upstreams for integration tests.
//
// The containers are behind the integration build tag:
//
//	go test -tags integration ./...
//
// # MongoDB
//
//	mongo, err := testinfra.NewMongoContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, mongo.Container)
//
//	db, err := database.New(ctx, &config.MongoConfig{URI: mongo.URI, Database: "marquee_test", ...})
//
// # Redis
//
// NewRedisContainer exposes Addr for the redis cache backend.
//
// # TMDB
//
// MockTMDBServer serves /genre/movie/list and /movie/popular from fixtures so
// the TMDB client and the sync pipeline can run without network access. It
// carries no build tag and is used by unit tests too.
//
// Tests are skipped when Docker is unavailable (SkipIfNoDocker).
package testinfra
