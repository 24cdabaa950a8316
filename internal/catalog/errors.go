// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import "errors"

var (
	// ErrMovieNotFound covers missing, removed and malformed ids alike.
	ErrMovieNotFound = errors.New("Movie Not Found") //nolint:staticcheck // client-facing message

	// ErrInvalidRating is returned for ratings outside [0, 10].
	ErrInvalidRating = errors.New("Rating must be between 0 and 10") //nolint:staticcheck // client-facing message

	// ErrInvalidReleaseDate is returned when releaseDate is not YYYY-MM-DD.
	ErrInvalidReleaseDate = errors.New("releaseDate must be a valid date (YYYY-MM-DD)")
)
