// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Movie is a catalog entry. Imported movies carry TMDBID and TMDBRating;
// movies created by an admin have neither.
type Movie struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	TMDBID        *int64        `bson:"tmdbId,omitempty" json:"tmdbId,omitempty"`
	Title         string        `bson:"title" json:"title"`
	Overview      string        `bson:"overview" json:"overview"`
	ReleaseDate   *time.Time    `bson:"releaseDate" json:"releaseDate"`
	PosterPath    string        `bson:"posterPath,omitempty" json:"posterPath,omitempty"`
	Image         string        `bson:"image,omitempty" json:"image,omitempty"`
	Adult         bool          `bson:"adult" json:"adult"`
	Genres        []string      `bson:"genres" json:"genres"`
	Type          string        `bson:"type,omitempty" json:"type,omitempty"`
	Rating        float64       `bson:"rating" json:"rating"`
	TMDBRating    *float64      `bson:"tmdbRating,omitempty" json:"tmdbRating,omitempty"`
	AverageRating float64       `bson:"averageRating" json:"averageRating"`
	UserRatings   []float64     `bson:"userRatings" json:"userRatings"`
	Removed       bool          `bson:"removed" json:"removed"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`

	// IsFavorite is computed per caller and never stored.
	IsFavorite bool `bson:"-" json:"isFavorite"`
}

// MovieTypePopular marks movies imported from TMDB's popular list.
const MovieTypePopular = "popular"

// MoviePage is one page of list results.
type MoviePage struct {
	Data  []Movie `json:"data"`
	Total int64   `json:"total"`
}

// ListQuery holds the list endpoint's search, filter, sort and paging
// parameters. It doubles as the input of the cache key, so it must only
// contain fields that change the result set.
type ListQuery struct {
	SearchField string   `json:"searchField,omitempty" query:"searchField" validate:"omitempty,searchfield"`
	SearchText  string   `json:"searchText,omitempty" query:"searchText" validate:"omitempty,max=200"`
	Page        int      `json:"page" query:"page" validate:"min=1"`
	Limit       int      `json:"limit" query:"limit" validate:"min=1"`
	Sort        string   `json:"sort,omitempty" query:"sort" validate:"omitempty,sortfield"`
	Genre       []string `json:"genre,omitempty" query:"genre" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// Normalize applies defaults and canonicalizes the query so equal queries
// compare (and hash) equal. Limit is clamped to maxLimit.
func (q ListQuery) Normalize(defaultLimit, maxLimit int) ListQuery {
	q.SearchField = strings.TrimSpace(q.SearchField)
	q.SearchText = strings.TrimSpace(q.SearchText)
	q.Sort = strings.TrimSpace(q.Sort)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	if len(q.Genre) > 0 {
		seen := make(map[string]struct{}, len(q.Genre))
		genres := make([]string, 0, len(q.Genre))
		for _, g := range q.Genre {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
		sort.Strings(genres)
		q.Genre = genres
	}
	if len(q.Genre) == 0 {
		q.Genre = nil
	}
	return q
}

// CreateMovieInput is the admin create body.
type CreateMovieInput struct {
	Title       string   `json:"title" validate:"required,max=300"`
	Overview    string   `json:"overview" validate:"max=5000"`
	ReleaseDate string   `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Image       string   `json:"image" validate:"max=2048"`
	PosterPath  string   `json:"posterPath" validate:"max=2048"`
	Adult       bool     `json:"adult"`
	Genres      []string `json:"genres" validate:"max=20,dive,min=1,max=50"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

// UpdateMovieInput is the admin partial update body. Nil fields are left unchanged.
type UpdateMovieInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=300"`
	Overview    *string   `json:"overview" validate:"omitempty,max=5000"`
	ReleaseDate *string   `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Image       *string   `json:"image" validate:"omitempty,max=2048"`
	PosterPath  *string   `json:"posterPath" validate:"omitempty,max=2048"`
	Adult       *bool     `json:"adult"`
	Genres      *[]string `json:"genres" validate:"omitempty,max=20,dive,min=1,max=50"`
	Rating      *float64  `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

// IsEmpty reports whether the patch changes nothing.
func (u *UpdateMovieInput) IsEmpty() bool {
	return u.Title == nil && u.Overview == nil && u.ReleaseDate == nil && u.Image == nil &&
		u.PosterPath == nil && u.Adult == nil && u.Genres == nil && u.Rating == nil
}

// RateInput is the rating body. A pointer distinguishes 0 from missing.
type RateInput struct {
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=10"`
}

// ParseReleaseDate parses YYYY-MM-DD; empty input yields nil.
func ParseReleaseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
