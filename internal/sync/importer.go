// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// FetchGenres returns TMDB's genre id -> name map, read through the cache.
// Cache failures are logged and fall through to TMDB.
func (m *Manager) FetchGenres(ctx context.Context) (map[int64]string, error) {
	if m.cache != nil {
		var genres map[int64]string
		hit, err := cache.GetJSON(ctx, m.cache, "genres", cache.KeyTMDBGenres, &genres)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Genre cache read failed")
		}
		if hit {
			return genres, nil
		}
	}

	list, err := m.client.GetGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tmdb genres: %w", err)
	}
	genres := list.GenreMap()

	if m.cache != nil {
		if err := cache.SetJSON(ctx, m.cache, cache.KeyTMDBGenres, genres, m.genreTTL); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Genre cache write failed")
		}
	}
	return genres, nil
}

// importCatalog walks the popular list and fills result as it goes, so a
// failed run still reports what it did.
func (m *Manager) importCatalog(ctx context.Context, result *models.SyncResult) (err error) {
	defer func() {
		if result.Inserted > 0 {
			m.invalidateLists(ctx)
		}
	}()

	genres, err := m.FetchGenres(ctx)
	if err != nil {
		return err
	}

	maxPages := m.cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := m.client.GetPopular(ctx, page)
		if err != nil {
			return fmt.Errorf("fetch tmdb popular page %d: %w", page, err)
		}
		result.Pages++
		if page == 1 {
			result.TotalPages = p.TotalPages
		}

		inserted, skipped, err := m.importPage(ctx, p.Results, genres)
		result.Inserted += inserted
		result.Skipped += skipped
		if err != nil {
			return fmt.Errorf("import page %d: %w", page, err)
		}

		logging.Ctx(ctx).Debug().
			Int("page", page).
			Int("inserted", inserted).
			Int("skipped", skipped).
			Msg("Imported popular page")
		m.broadcast(ctx, models.SyncEventProgress, result)

		if page >= min(p.TotalPages, maxPages) {
			return nil
		}
	}
}

// importPage inserts the results whose tmdbId is not stored yet. Duplicates
// within the page and insert races on the unique index count as skipped.
func (m *Manager) importPage(ctx context.Context, results []tmdb.Movie, genres map[int64]string) (inserted, skipped int, err error) {
	if len(results) == 0 {
		return 0, 0, nil
	}

	ids := make([]int64, 0, len(results))
	for i := range results {
		ids = append(ids, results[i].ID)
	}
	existing, err := m.movies.ExistingTMDBIDs(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup existing tmdb ids: %w", err)
	}

	seen := make(map[int64]bool, len(results))
	for i := range results {
		r := &results[i]
		if existing[r.ID] || seen[r.ID] {
			skipped++
			continue
		}
		seen[r.ID] = true

		movie := toMovie(ctx, r, genres)
		if err := m.movies.Insert(ctx, movie); err != nil {
			var dup *database.DuplicateKeyError
			if errors.As(err, &dup) {
				skipped++
				continue
			}
			return inserted, skipped, fmt.Errorf("insert tmdb movie %d: %w", r.ID, err)
		}
		inserted++
	}
	return inserted, skipped, nil
}

// toMovie maps a TMDB result to a catalog movie. Unknown genre ids are
// dropped; an unparseable release date is stored as null.
func toMovie(ctx context.Context, r *tmdb.Movie, genres map[int64]string) *models.Movie {
	names := make([]string, 0, len(r.GenreIDs))
	for _, id := range r.GenreIDs {
		if name, ok := genres[id]; ok {
			names = append(names, name)
		}
	}

	releaseDate, err := models.ParseReleaseDate(r.ReleaseDate)
	if err != nil {
		logging.Ctx(ctx).Debug().Int64("tmdb_id", r.ID).Str("release_date", r.ReleaseDate).Msg("Unparseable release date")
		releaseDate = nil
	}

	tmdbID := r.ID
	vote := r.VoteAverage
	return &models.Movie{
		TMDBID:        &tmdbID,
		Title:         r.Title,
		Overview:      r.Overview,
		ReleaseDate:   releaseDate,
		PosterPath:    r.PosterPath,
		Adult:         r.Adult,
		Genres:        names,
		Type:          models.MovieTypePopular,
		Rating:        vote,
		TMDBRating:    &vote,
		AverageRating: vote,
		UserRatings:   []float64{},
	}
}

func (m *Manager) invalidateLists(ctx context.Context) {
	if m.cache == nil {
		return
	}
	// The run context may already be canceled; invalidation must still happen.
	if err := cache.Invalidate(context.WithoutCancel(ctx), m.cache, cache.PrefixMovieList); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Movie list cache invalidation failed")
	}
}
