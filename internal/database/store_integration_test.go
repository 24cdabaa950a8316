// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build integration

package database

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/testinfra"
)

func setupTestDB(t *testing.T) (*DB, context.Context) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	mc, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start mongo: %v", err)
	}
	t.Cleanup(func() { testinfra.CleanupContainer(t, context.Background(), mc.Container) })

	db, err := New(ctx, &config.MongoConfig{
		URI:              mc.URI,
		Database:         "marquee_test",
		ConnectTimeout:   20 * time.Second,
		OperationTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db, ctx
}

func ptr[T any](v T) *T { return &v }

func TestStores_Integration(t *testing.T) {
	db, ctx := setupTestDB(t)
	movies := db.Movies()
	users := db.Users()

	t.Run("list filters sorts and pages", func(t *testing.T) {
		for i, m := range []models.Movie{
			{Title: "Alien", Genres: []string{"Horror"}, TMDBID: ptr(int64(348)), TMDBRating: ptr(8.1)},
			{Title: "Aliens", Genres: []string{"Action", "Horror"}, TMDBID: ptr(int64(679))},
			{Title: "Heat", Genres: []string{"Crime"}},
		} {
			m := m
			if err := movies.Insert(ctx, &m); err != nil {
				t.Fatalf("Insert %d: %v", i, err)
			}
		}

		page, err := movies.List(ctx, models.ListQuery{Page: 1, Limit: 10, Genre: []string{"Horror"}, Sort: "title"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if page.Total != 2 || len(page.Data) != 2 {
			t.Fatalf("horror page = %d/%d, want 2/2", len(page.Data), page.Total)
		}
		if page.Data[0].Title != "Alien" {
			t.Errorf("first = %s, want Alien", page.Data[0].Title)
		}

		page, err = movies.List(ctx, models.ListQuery{Page: 2, Limit: 2, SearchField: "title", SearchText: "ALIEN"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if page.Total != 2 || len(page.Data) != 0 {
			t.Errorf("second page = %d/%d, want 0/2", len(page.Data), page.Total)
		}

		page, err = movies.List(ctx, models.ListQuery{Page: 1, Limit: 10, SearchField: "title", SearchText: "zzz"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if page.Total != 0 || page.Data == nil {
			t.Errorf("empty result = %+v, want total 0 and non-nil data", page)
		}
	})

	t.Run("duplicate tmdb id", func(t *testing.T) {
		err := movies.Insert(ctx, &models.Movie{Title: "Alien again", TMDBID: ptr(int64(348))})
		var dk *DuplicateKeyError
		if !errors.As(err, &dk) {
			t.Fatalf("Insert duplicate = %v, want DuplicateKeyError", err)
		}
		if dk.Key != "tmdbId" {
			t.Errorf("dup key = %s, want tmdbId", dk.Key)
		}

		found, err := movies.ExistingTMDBIDs(ctx, []int64{348, 679, 1})
		if err != nil {
			t.Fatalf("ExistingTMDBIDs: %v", err)
		}
		if !found[348] || !found[679] || found[1] {
			t.Errorf("ExistingTMDBIDs = %v", found)
		}
	})

	t.Run("rating update", func(t *testing.T) {
		m := &models.Movie{Title: "Rated", TMDBRating: ptr(7.0)}
		if err := movies.Insert(ctx, m); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		got, err := movies.AppendRating(ctx, m.ID, 5)
		if err != nil {
			t.Fatalf("AppendRating: %v", err)
		}
		if math.Abs(got.AverageRating-6) > 1e-9 {
			t.Errorf("averageRating = %v, want 6", got.AverageRating)
		}

		plain := &models.Movie{Title: "Admin made"}
		_ = movies.Insert(ctx, plain)
		_, _ = movies.AppendRating(ctx, plain.ID, 4)
		got, err = movies.AppendRating(ctx, plain.ID, 8)
		if err != nil {
			t.Fatalf("AppendRating: %v", err)
		}
		if math.Abs(got.AverageRating-6) > 1e-9 || len(got.UserRatings) != 2 {
			t.Errorf("plain average = %v over %v, want 6", got.AverageRating, got.UserRatings)
		}
	})

	t.Run("soft delete hides movie", func(t *testing.T) {
		m := &models.Movie{Title: "Doomed"}
		_ = movies.Insert(ctx, m)
		if err := movies.SoftDelete(ctx, m.ID); err != nil {
			t.Fatalf("SoftDelete: %v", err)
		}
		if _, err := movies.FindByID(ctx, m.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID removed = %v, want ErrNotFound", err)
		}
		if err := movies.SoftDelete(ctx, m.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second SoftDelete = %v, want ErrNotFound", err)
		}
		if _, err := movies.Update(ctx, m.ID, bson.D{{Key: "title", Value: "x"}}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update removed = %v, want ErrNotFound", err)
		}
	})

	t.Run("users and favorites", func(t *testing.T) {
		u := &models.User{Username: "neo", Name: "Thomas", PasswordHash: "h", Role: models.RoleUser}
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}

		err := users.Create(ctx, &models.User{Username: "neo", PasswordHash: "h", Role: models.RoleUser})
		var dk *DuplicateKeyError
		if !errors.As(err, &dk) || dk.Key != "username" || dk.Value != "neo" {
			t.Fatalf("duplicate username = %v", err)
		}

		got, err := users.ToggleFavorite(ctx, u.ID, "m1")
		if err != nil {
			t.Fatalf("ToggleFavorite: %v", err)
		}
		got, _ = users.ToggleFavorite(ctx, u.ID, "m2")
		if len(got.FavoriteMovies) != 2 {
			t.Fatalf("favorites = %v", got.FavoriteMovies)
		}
		got, _ = users.ToggleFavorite(ctx, u.ID, "m1")
		if len(got.FavoriteMovies) != 1 || got.FavoriteMovies[0] != "m2" {
			t.Errorf("favorites after toggle off = %v, want [m2]", got.FavoriteMovies)
		}

		if err := users.SoftDelete(ctx, u.ID); err != nil {
			t.Fatalf("SoftDelete: %v", err)
		}
		if _, err := users.FindActiveByUsername(ctx, "neo"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindActiveByUsername removed = %v, want ErrNotFound", err)
		}

		list, total, err := users.List(ctx, models.UserListQuery{Page: 1, Limit: 10, IncludeRemoved: true})
		if err != nil || total != 1 || len(list) != 1 {
			t.Errorf("List(includeRemoved) = %d/%d, %v", len(list), total, err)
		}
		list, total, _ = users.List(ctx, models.UserListQuery{Page: 1, Limit: 10})
		if total != 0 || len(list) != 0 {
			t.Errorf("List = %d/%d, want 0/0", len(list), total)
		}
	})

	t.Run("audit events query and retention", func(t *testing.T) {
		store := db.Audit()
		base := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Millisecond)

		events := []audit.Event{
			{ID: "a1", Timestamp: base, Type: audit.EventTypeAuthFailure, Outcome: audit.OutcomeFailure, Actor: audit.Actor{ID: "x@example.com", Type: "anonymous"}},
			{ID: "a2", Timestamp: base.Add(24 * time.Hour), Type: audit.EventTypeMovieCreated, Outcome: audit.OutcomeSuccess, Actor: audit.Actor{ID: "admin1", Type: "user"}, Target: &audit.Target{ID: "m1", Type: "movie"}},
			{ID: "a3", Timestamp: base.Add(47 * time.Hour), Type: audit.EventTypeMovieDeleted, Outcome: audit.OutcomeSuccess, Actor: audit.Actor{ID: "admin1", Type: "user"}, Target: &audit.Target{ID: "m1", Type: "movie"}},
		}
		for i := range events {
			if err := store.Save(ctx, &events[i]); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		got, err := store.Query(ctx, audit.QueryFilter{ActorID: "admin1", Limit: 10})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 2 || got[0].ID != "a3" || got[1].ID != "a2" {
			t.Errorf("Query(actor) = %+v, want [a3 a2]", got)
		}

		n, err := store.Count(ctx, audit.QueryFilter{TargetID: "m1"})
		if err != nil || n != 2 {
			t.Errorf("Count(target) = %d, %v, want 2", n, err)
		}

		deleted, err := store.Delete(ctx, base.Add(time.Hour))
		if err != nil || deleted != 1 {
			t.Errorf("Delete = %d, %v, want 1", deleted, err)
		}
		n, _ = store.Count(ctx, audit.QueryFilter{})
		if n != 2 {
			t.Errorf("Count after Delete = %d, want 2", n)
		}
	})
}
