// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Cache type labels for metrics.
const (
	cacheTypeList = "movie_list"
	cacheTypeItem = "movie_item"
)

// MovieStore is the persistence the catalog needs. *database.MovieStore
// implements it.
type MovieStore interface {
	List(ctx context.Context, q models.ListQuery) (*models.MoviePage, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) error
	Update(ctx context.Context, id bson.ObjectID, set bson.D) (*models.Movie, error)
	SoftDelete(ctx context.Context, id bson.ObjectID) error
	AppendRating(ctx context.Context, id bson.ObjectID, rating float64) (*models.Movie, error)
}

// Service implements movie listing, lookup and admin mutations.
type Service struct {
	store        MovieStore
	cache        cache.Store
	ttl          time.Duration
	defaultLimit int
	maxLimit     int
}

// NewService creates the catalog service.
func NewService(store MovieStore, cacheStore cache.Store, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		cache:        cacheStore,
		ttl:          cfg.Cache.TTL,
		defaultLimit: cfg.API.DefaultPageSize,
		maxLimit:     cfg.API.MaxPageSize,
	}
}

// NormalizeQuery applies paging defaults and canonical ordering.
func (s *Service) NormalizeQuery(q models.ListQuery) models.ListQuery {
	return q.Normalize(s.defaultLimit, s.maxLimit)
}

// DeriveCacheKey returns the list key for q. Equal queries (after
// normalization) share a key.
func (s *Service) DeriveCacheKey(q models.ListQuery) string {
	return cache.GenerateKey(cache.PrefixMovieList, s.NormalizeQuery(q))
}

// List returns one page of active movies. The bool reports a cache hit.
// favorites marks isFavorite on the returned copy; it may be nil.
func (s *Service) List(ctx context.Context, q models.ListQuery, favorites map[string]struct{}) (*models.MoviePage, bool, error) {
	q = s.NormalizeQuery(q)
	key := cache.GenerateKey(cache.PrefixMovieList, q)

	var page models.MoviePage
	cached, err := cache.GetJSON(ctx, s.cache, cacheTypeList, key, &page)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Movie list cache read failed")
	}

	if !cached {
		fresh, err := s.store.List(ctx, q)
		if err != nil {
			return nil, false, fmt.Errorf("list movies: %w", err)
		}
		page = *fresh
		if err := cache.SetJSON(ctx, s.cache, key, &page, s.ttl); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Movie list cache write failed")
		}
	}

	if page.Data == nil {
		page.Data = []models.Movie{}
	}
	markFavorites(page.Data, favorites)
	return &page, cached, nil
}

// Get returns an active movie by hex id.
func (s *Service) Get(ctx context.Context, id string, favorites map[string]struct{}) (*models.Movie, bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, false, err
	}
	key := cache.MovieItemKey(oid.Hex())

	var movie models.Movie
	cached, err := cache.GetJSON(ctx, s.cache, cacheTypeItem, key, &movie)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Movie cache read failed")
	}

	if !cached {
		found, err := s.store.FindByID(ctx, oid)
		if err != nil {
			return nil, false, mapNotFound(err)
		}
		movie = *found
		if err := cache.SetJSON(ctx, s.cache, key, &movie, s.ttl); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Movie cache write failed")
		}
	}

	_, movie.IsFavorite = favorites[movie.ID.Hex()]
	return &movie, cached, nil
}

// Exists returns ErrMovieNotFound unless id names an active movie.
func (s *Service) Exists(ctx context.Context, id string) error {
	_, _, err := s.Get(ctx, id, nil)
	return err
}

// Create inserts an admin-authored movie.
func (s *Service) Create(ctx context.Context, in *models.CreateMovieInput) (*models.Movie, error) {
	releaseDate, err := models.ParseReleaseDate(in.ReleaseDate)
	if err != nil {
		return nil, ErrInvalidReleaseDate
	}

	genres := in.Genres
	if genres == nil {
		genres = []string{}
	}
	var rating float64
	if in.Rating != nil {
		rating = *in.Rating
	}

	movie := &models.Movie{
		Title:       strings.TrimSpace(in.Title),
		Overview:    in.Overview,
		ReleaseDate: releaseDate,
		Image:       in.Image,
		PosterPath:  in.PosterPath,
		Adult:       in.Adult,
		Genres:      genres,
		Rating:      rating,
		UserRatings: []float64{},
	}
	if err := s.store.Insert(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.Invalidate(ctx, "")
	logging.Ctx(ctx).Info().Str("movie_id", movie.ID.Hex()).Str("title", movie.Title).Msg("Movie created")
	return movie, nil
}

// Update applies a partial update. Nil fields are left unchanged.
func (s *Service) Update(ctx context.Context, id string, in *models.UpdateMovieInput) (*models.Movie, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		movie, _, err := s.Get(ctx, oid.Hex(), nil)
		return movie, err
	}

	set, err := updateSet(in)
	if err != nil {
		return nil, err
	}

	movie, err := s.store.Update(ctx, oid, set)
	if err != nil {
		return nil, mapNotFound(err)
	}

	s.Invalidate(ctx, oid.Hex())
	logging.Ctx(ctx).Info().Str("movie_id", oid.Hex()).Int("fields", len(set)).Msg("Movie updated")
	return movie, nil
}

// Remove soft-deletes a movie.
func (s *Service) Remove(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, oid); err != nil {
		return mapNotFound(err)
	}

	s.Invalidate(ctx, oid.Hex())
	logging.Ctx(ctx).Info().Str("movie_id", oid.Hex()).Msg("Movie removed")
	return nil
}

// Rate appends rating and returns the movie with its recomputed average.
func (s *Service) Rate(ctx context.Context, id string, rating float64) (*models.Movie, error) {
	if math.IsNaN(rating) || rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	movie, err := s.store.AppendRating(ctx, oid, rating)
	if err != nil {
		return nil, mapNotFound(err)
	}

	s.Invalidate(ctx, oid.Hex())
	return movie, nil
}

// Invalidate drops every list page and, when id is non-empty, the item key.
// Errors are logged, never returned.
func (s *Service) Invalidate(ctx context.Context, id string) {
	var keys []string
	if id != "" {
		keys = append(keys, cache.MovieItemKey(id))
	}
	if err := cache.Invalidate(context.WithoutCancel(ctx), s.cache, cache.PrefixMovieList, keys...); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("movie_id", id).Msg("Movie cache invalidation failed")
	}
}

func updateSet(in *models.UpdateMovieInput) (bson.D, error) {
	set := bson.D{}
	if in.Title != nil {
		set = append(set, bson.E{Key: "title", Value: strings.TrimSpace(*in.Title)})
	}
	if in.Overview != nil {
		set = append(set, bson.E{Key: "overview", Value: *in.Overview})
	}
	if in.ReleaseDate != nil {
		releaseDate, err := models.ParseReleaseDate(*in.ReleaseDate)
		if err != nil {
			return nil, ErrInvalidReleaseDate
		}
		set = append(set, bson.E{Key: "releaseDate", Value: releaseDate})
	}
	if in.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *in.Image})
	}
	if in.PosterPath != nil {
		set = append(set, bson.E{Key: "posterPath", Value: *in.PosterPath})
	}
	if in.Adult != nil {
		set = append(set, bson.E{Key: "adult", Value: *in.Adult})
	}
	if in.Genres != nil {
		genres := *in.Genres
		if genres == nil {
			genres = []string{}
		}
		set = append(set, bson.E{Key: "genres", Value: genres})
	}
	if in.Rating != nil {
		set = append(set, bson.E{Key: "rating", Value: *in.Rating})
	}
	return set, nil
}

func markFavorites(movies []models.Movie, favorites map[string]struct{}) {
	for i := range movies {
		_, movies[i].IsFavorite = favorites[movies[i].ID.Hex()]
	}
}

func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrMovieNotFound
	}
	return oid, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrMovieNotFound
	}
	return err
}
