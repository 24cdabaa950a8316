// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/marquee/internal/models"
)

// MovieStore persists movies.
type MovieStore struct {
	db   *DB
	coll *mongo.Collection
}

// activeByID matches a movie that has not been soft-deleted.
func activeByID(id bson.ObjectID) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "removed", Value: false}}
}

type facetResult struct {
	Data     []models.Movie `bson:"data"`
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
}

// List runs BuildListPipeline. Total is 0 when nothing matches.
func (s *MovieStore) List(ctx context.Context, q models.ListQuery) (page *models.MoviePage, err error) {
	start := time.Now()
	defer func() { err = observe("aggregate", moviesCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	cursor, err := s.coll.Aggregate(ctx, BuildListPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate movies: %w", err)
	}

	var results []facetResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode movies: %w", err)
	}

	page = &models.MoviePage{Data: []models.Movie{}}
	if len(results) == 0 {
		return page, nil
	}
	if results[0].Data != nil {
		page.Data = results[0].Data
	}
	if len(results[0].Metadata) > 0 {
		page.Total = results[0].Metadata[0].Total
	}
	return page, nil
}

// FindByID returns an active movie.
func (s *MovieStore) FindByID(ctx context.Context, id bson.ObjectID) (movie *models.Movie, err error) {
	start := time.Now()
	defer func() { err = observe("find_one", moviesCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	movie = &models.Movie{}
	if err := s.coll.FindOne(ctx, activeByID(id)).Decode(movie); err != nil {
		return nil, err
	}
	return movie, nil
}

// Insert stores a new movie, assigning its id and timestamps.
func (s *MovieStore) Insert(ctx context.Context, movie *models.Movie) (err error) {
	start := time.Now()
	defer func() { err = observe("insert_one", moviesCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	if movie.ID.IsZero() {
		movie.ID = bson.NewObjectID()
	}
	movie.CreatedAt = now
	movie.UpdatedAt = now
	if movie.Genres == nil {
		movie.Genres = []string{}
	}
	if movie.UserRatings == nil {
		movie.UserRatings = []float64{}
	}

	if _, err := s.coll.InsertOne(ctx, movie); err != nil {
		return err
	}
	return nil
}

// Update applies set to an active movie and returns the updated document.
func (s *MovieStore) Update(ctx context.Context, id bson.ObjectID, set bson.D) (movie *models.Movie, err error) {
	start := time.Now()
	defer func() { err = observe("find_one_and_update", moviesCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	movie = &models.Movie{}
	err = s.coll.FindOneAndUpdate(ctx, activeByID(id), bson.D{{Key: "$set", Value: set}}, opts).Decode(movie)
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// SoftDelete marks an active movie removed.
func (s *MovieStore) SoftDelete(ctx context.Context, id bson.ObjectID) (err error) {
	start := time.Now()
	defer func() { err = observe("update_one", moviesCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx, activeByID(id), bson.D{{Key: "$set", Value: bson.D{
		{Key: "removed", Value: true},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendRating records a user rating and recomputes averageRating atomically.
func (s *MovieStore) AppendRating(ctx context.Context, id bson.ObjectID, rating float64) (movie *models.Movie, err error) {
	start := time.Now()
	defer func() { err = observe("rate", moviesCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	movie = &models.Movie{}
	err = s.coll.FindOneAndUpdate(ctx, activeByID(id), ratingUpdatePipeline(rating), opts).Decode(movie)
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// ExistingTMDBIDs returns which of ids are already stored, removed or not.
func (s *MovieStore) ExistingTMDBIDs(ctx context.Context, ids []int64) (found map[int64]bool, err error) {
	found = make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	start := time.Now()
	defer func() { err = observe("find", moviesCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	filter := bson.D{{Key: "tmdbId", Value: bson.D{{Key: "$in", Value: ids}}}}
	opts := options.Find().SetProjection(bson.D{{Key: "tmdbId", Value: 1}, {Key: "_id", Value: 0}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		TMDBID int64 `bson:"tmdbId"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		found[r.TMDBID] = true
	}
	return found, nil
}
