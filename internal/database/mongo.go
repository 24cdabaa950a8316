// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package database is Marquee's MongoDB access layer.
//
// DB owns the client and hands out collection-scoped stores (MovieStore,
// UserStore, AuditStore). Every operation is bounded by the configured operation timeout,
// timed into the mongo_query_* metrics, and has its driver errors mapped to
// ErrNotFound or *DuplicateKeyError where applicable.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

const (
	moviesCollection = "movies"
	usersCollection  = "users"
	auditCollection  = "audit_events"
)

// DB wraps the MongoDB client.
type DB struct {
	client    *mongo.Client
	db        *mongo.Database
	opTimeout time.Duration

	movies *MovieStore
	users  *UserStore
	audit  *AuditStore
}

// New connects, verifies the connection and ensures indexes exist.
func New(ctx context.Context, cfg *config.MongoConfig) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("marquee").
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	db := newDB(client, cfg.Database, cfg.OperationTimeout)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logging.Info().
		Str("database", cfg.Database).
		Dur("op_timeout", cfg.OperationTimeout).
		Msg("Connected to MongoDB")
	return db, nil
}

func newDB(client *mongo.Client, name string, opTimeout time.Duration) *DB {
	if opTimeout <= 0 {
		opTimeout = 15 * time.Second
	}
	mdb := client.Database(name)
	d := &DB{client: client, db: mdb, opTimeout: opTimeout}
	d.movies = &MovieStore{db: d, coll: mdb.Collection(moviesCollection)}
	d.users = &UserStore{db: d, coll: mdb.Collection(usersCollection)}
	d.audit = &AuditStore{db: d, coll: mdb.Collection(auditCollection)}
	return d
}

// Movies returns the movie store.
func (d *DB) Movies() *MovieStore { return d.movies }

// Users returns the user store.
func (d *DB) Users() *UserStore { return d.users }

// Audit returns the audit event store.
func (d *DB) Audit() *AuditStore { return d.audit }

// Ping checks connectivity against the primary.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the stores rely on. Creating an existing
// index with identical options is a no-op on the server.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := d.opContext(ctx)
	defer cancel()

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_1").SetUnique(true),
		},
	}
	if _, err := d.users.coll.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	movieIndexes := []mongo.IndexModel{
		{
			// Admin-created movies have no tmdbId, so uniqueness only applies
			// to imported ones.
			Keys: bson.D{{Key: "tmdbId", Value: 1}},
			Options: options.Index().
				SetName("tmdbId_1").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "tmdbId", Value: bson.D{{Key: "$exists", Value: true}}}}),
		},
		{
			Keys:    bson.D{{Key: "removed", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("removed_1_createdAt_-1"),
		},
		{
			Keys:    bson.D{{Key: "genres", Value: 1}},
			Options: options.Index().SetName("genres_1"),
		},
	}
	if _, err := d.movies.coll.Indexes().CreateMany(ctx, movieIndexes); err != nil {
		return fmt.Errorf("failed to create movie indexes: %w", err)
	}

	auditIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_-1"),
		},
		{
			Keys:    bson.D{{Key: "actor.id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("actor.id_1_timestamp_-1"),
		},
	}
	if _, err := d.audit.coll.Indexes().CreateMany(ctx, auditIndexes); err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

// opContext bounds a single operation.
func (d *DB) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.opTimeout)
}

// observe records timing and maps the driver error.
func observe(operation, collection string, start time.Time, err error) error {
	err = mapError(err)
	metrics.RecordDBQuery(operation, collection, time.Since(start), err)
	return err
}
