// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/marquee/internal/models"
)

// UserStore persists accounts.
type UserStore struct {
	db   *DB
	coll *mongo.Collection
}

// Create inserts a user. A taken username yields *DuplicateKeyError.
func (s *UserStore) Create(ctx context.Context, user *models.User) (err error) {
	start := time.Now()
	defer func() { err = observe("insert_one", usersCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}

	_, err = s.coll.InsertOne(ctx, user)
	return err
}

// FindActiveByUsername looks up a non-removed user.
func (s *UserStore) FindActiveByUsername(ctx context.Context, username string) (user *models.User, err error) {
	start := time.Now()
	defer func() { err = observe("find_one", usersCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	user = &models.User{}
	filter := bson.D{{Key: "username", Value: username}, {Key: "removed", Value: false}}
	if err := s.coll.FindOne(ctx, filter).Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID returns a user whether or not it was removed; callers decide.
func (s *UserStore) FindByID(ctx context.Context, id bson.ObjectID) (user *models.User, err error) {
	start := time.Now()
	defer func() { err = observe("find_one", usersCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	user = &models.User{}
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

// List pages users, newest first.
func (s *UserStore) List(ctx context.Context, q models.UserListQuery) (users []models.User, total int64, err error) {
	start := time.Now()
	defer func() { err = observe("find", usersCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	filter := bson.D{}
	if !q.IncludeRemoved {
		filter = bson.D{{Key: "removed", Value: false}}
	}

	total, err = s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(q.Page-1) * int64(q.Limit)).
		SetLimit(int64(q.Limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	users = []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update applies set to a non-removed user.
func (s *UserStore) Update(ctx context.Context, id bson.ObjectID, set bson.D) (user *models.User, err error) {
	start := time.Now()
	defer func() { err = observe("find_one_and_update", usersCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	filter := bson.D{{Key: "_id", Value: id}, {Key: "removed", Value: false}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	user = &models.User{}
	if err := s.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SoftDelete marks a user removed.
func (s *UserStore) SoftDelete(ctx context.Context, id bson.ObjectID) (err error) {
	_, err = s.Update(ctx, id, bson.D{{Key: "removed", Value: true}})
	return err
}

// ToggleFavorite flips movieID in the user's favorites atomically.
func (s *UserStore) ToggleFavorite(ctx context.Context, id bson.ObjectID, movieID string) (user *models.User, err error) {
	start := time.Now()
	defer func() { err = observe("toggle_favorite", usersCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: id}, {Key: "removed", Value: false}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	user = &models.User{}
	if err := s.coll.FindOneAndUpdate(ctx, filter, toggleFavoritePipeline(movieID), opts).Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}
