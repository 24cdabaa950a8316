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

	"github.com/tomtom215/marquee/internal/audit"
)

// AuditStore implements audit.Store over the audit_events collection.
type AuditStore struct {
	db   *DB
	coll *mongo.Collection
}

var _ audit.Store = (*AuditStore)(nil)

// Save inserts one event.
func (s *AuditStore) Save(ctx context.Context, event *audit.Event) (err error) {
	start := time.Now()
	defer func() { err = observe("insert_one", auditCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	_, err = s.coll.InsertOne(ctx, event)
	return err
}

// Query returns matching events, newest first.
func (s *AuditStore) Query(ctx context.Context, filter audit.QueryFilter) (events []audit.Event, err error) {
	start := time.Now()
	defer func() { err = observe("find", auditCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := s.coll.Find(ctx, auditFilter(filter), opts)
	if err != nil {
		return nil, err
	}

	events = make([]audit.Event, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of matching events.
func (s *AuditStore) Count(ctx context.Context, filter audit.QueryFilter) (n int64, err error) {
	start := time.Now()
	defer func() { err = observe("count", auditCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	return s.coll.CountDocuments(ctx, auditFilter(filter))
}

// Delete removes events recorded before olderThan.
func (s *AuditStore) Delete(ctx context.Context, olderThan time.Time) (n int64, err error) {
	start := time.Now()
	defer func() { err = observe("delete_many", auditCollection, start, err) }()

	ctx, cancel := s.db.opContext(ctx)
	defer cancel()

	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "timestamp", Value: bson.D{{Key: "$lt", Value: olderThan}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// auditFilter translates a query filter into a find document. Limit and
// Offset are applied as find options.
func auditFilter(f audit.QueryFilter) bson.D {
	filter := bson.D{}

	if len(f.Types) > 0 {
		filter = append(filter, bson.E{Key: "type", Value: bson.D{{Key: "$in", Value: f.Types}}})
	}
	if len(f.Outcomes) > 0 {
		filter = append(filter, bson.E{Key: "outcome", Value: bson.D{{Key: "$in", Value: f.Outcomes}}})
	}
	if f.ActorID != "" {
		filter = append(filter, bson.E{Key: "actor.id", Value: f.ActorID})
	}
	if f.TargetID != "" {
		filter = append(filter, bson.E{Key: "target.id", Value: f.TargetID})
	}
	if f.TargetType != "" {
		filter = append(filter, bson.E{Key: "target.type", Value: f.TargetType})
	}

	if f.StartTime != nil || f.EndTime != nil {
		window := bson.D{}
		if f.StartTime != nil {
			window = append(window, bson.E{Key: "$gte", Value: *f.StartTime})
		}
		if f.EndTime != nil {
			window = append(window, bson.E{Key: "$lte", Value: *f.EndTime})
		}
		filter = append(filter, bson.E{Key: "timestamp", Value: window})
	}

	return filter
}
