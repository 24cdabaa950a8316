// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
)

// errEmptyBody is returned by decodeJSON for a missing body.
var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads the whole body and decodes it into dst. Body reads fail
// with *http.MaxBytesError once BodyLimit is exceeded; the error is returned
// unwrapped so callers can answer 413.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}

	return intValue
}

// getBoolParam extracts a boolean query parameter with a default value
func getBoolParam(r *http.Request, key string, defaultValue bool) bool {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// parseCommaSeparated parses a comma-separated string into a slice
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseListQuery reads the movie list parameters. genre may repeat
// (?genre=Action&genre=Drama) or be comma separated (?genre=Action,Drama).
// Paging values that do not parse fall back to defaults.
func parseListQuery(r *http.Request) models.ListQuery {
	q := r.URL.Query()

	var genres []string
	for _, g := range q["genre"] {
		genres = append(genres, parseCommaSeparated(g)...)
	}

	return models.ListQuery{
		SearchField: q.Get("searchField"),
		SearchText:  q.Get("searchText"),
		Page:        getIntParam(r, "page", 1),
		Limit:       getIntParam(r, "limit", 0),
		Sort:        q.Get("sort"),
		Genre:       genres,
	}
}

// parseUserListQuery reads the admin user list parameters.
func parseUserListQuery(r *http.Request) models.UserListQuery {
	q := models.UserListQuery{
		Page:           getIntParam(r, "page", 1),
		Limit:          getIntParam(r, "limit", 10),
		IncludeRemoved: getBoolParam(r, "includeRemoved", false),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	return q
}
