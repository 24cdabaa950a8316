// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tomtom215/marquee/internal/models"
)

// BuildListPipeline turns a normalized list query into the aggregation run by
// MovieStore.List. Stages, in order:
//
//  1. $match removed=false
//  2. $match genres $in genre (only when genre is non-empty)
//  3. $match <searchField> case-insensitive regex (only when field and text are set)
//  4. $sort by the requested field, createdAt descending as tie-breaker
//  5. $facet {data: [$skip, $limit], metadata: [$count total]}
func BuildListPipeline(q models.ListQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "removed", Value: false}}}},
	}

	if len(q.Genre) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "genres", Value: bson.D{{Key: "$in", Value: q.Genre}}},
		}}})
	}

	if q.SearchField != "" && q.SearchText != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: q.SearchField, Value: bson.Regex{Pattern: regexp.QuoteMeta(q.SearchText), Options: "i"}},
		}}})
	}

	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortSpec(q.Sort)}})

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	skip := int64(page-1) * int64(limit)

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "data", Value: bson.A{
			bson.D{{Key: "$skip", Value: skip}},
			bson.D{{Key: "$limit", Value: int64(limit)}},
		}},
		{Key: "metadata", Value: bson.A{
			bson.D{{Key: "$count", Value: "total"}},
		}},
	}}})

	return pipeline
}

// sortSpec maps "field" / "-field" to a $sort document. createdAt is appended
// as a descending tie-breaker unless it is already the primary key.
func sortSpec(sort string) bson.D {
	if sort == "" {
		return bson.D{{Key: "createdAt", Value: -1}}
	}

	dir := 1
	field := sort
	if strings.HasPrefix(sort, "-") {
		dir = -1
		field = strings.TrimPrefix(sort, "-")
	}

	spec := bson.D{{Key: field, Value: dir}}
	if field != "createdAt" {
		spec = append(spec, bson.E{Key: "createdAt", Value: -1})
	}
	return spec
}

// ratingUpdatePipeline appends rating to userRatings and recomputes
// averageRating in one update. Imported movies weigh the TMDB score as one
// extra vote; admin-created movies average user ratings only.
func ratingUpdatePipeline(rating float64) mongo.Pipeline {
	existing := bson.D{{Key: "$ifNull", Value: bson.A{"$userRatings", bson.A{}}}}

	appendRating := bson.D{{Key: "$set", Value: bson.D{
		{Key: "userRatings", Value: bson.D{{Key: "$concatArrays", Value: bson.A{existing, bson.A{rating}}}}},
		{Key: "updatedAt", Value: "$$NOW"},
	}}}

	weighted := bson.D{{Key: "$divide", Value: bson.A{
		bson.D{{Key: "$add", Value: bson.A{"$tmdbRating", bson.D{{Key: "$sum", Value: "$userRatings"}}}}},
		bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$size", Value: "$userRatings"}}, 1}}},
	}}}
	plain := bson.D{{Key: "$avg", Value: "$userRatings"}}

	recompute := bson.D{{Key: "$set", Value: bson.D{
		{Key: "averageRating", Value: bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$isNumber", Value: "$tmdbRating"}}},
			{Key: "then", Value: weighted},
			{Key: "else", Value: plain},
		}}}},
	}}}

	return mongo.Pipeline{appendRating, recompute}
}

// toggleFavoritePipeline adds movieID to favoriteMovies when absent and
// removes it when present, preserving the order of the remaining ids.
func toggleFavoritePipeline(movieID string) mongo.Pipeline {
	existing := bson.D{{Key: "$ifNull", Value: bson.A{"$favoriteMovies", bson.A{}}}}

	toggled := bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{movieID, existing}}}},
		{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: existing},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", movieID}}}},
		}}}},
		{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{existing, bson.A{movieID}}}}},
	}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "favoriteMovies", Value: toggled},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
}

// AverageRating is the in-memory form of the rating formula applied by
// ratingUpdatePipeline.
func AverageRating(tmdbRating *float64, userRatings []float64) float64 {
	var sum float64
	for _, r := range userRatings {
		sum += r
	}
	if tmdbRating != nil {
		return (*tmdbRating + sum) / float64(len(userRatings)+1)
	}
	if len(userRatings) == 0 {
		return 0
	}
	return sum / float64(len(userRatings))
}
