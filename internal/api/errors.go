// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/marquee/internal/accounts"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	syncpkg "github.com/tomtom215/marquee/internal/sync"
	"github.com/tomtom215/marquee/internal/validation"
)

// Client-facing messages not owned by a domain package.
const (
	msgInvalidBody       = "Invalid request body"
	msgBodyTooLarge      = "Request body too large"
	msgInternal          = "Internal server error"
	msgSyncUnavailable   = "Catalog sync is not configured"
	msgSyncRunning       = "A catalog sync is already running"
	msgSyncTriggered     = "Catalog sync started"
	msgStreamUnavailable = "Sync event stream unavailable"
	msgMovieUpdated      = "Movie updated successfully"
	msgMovieRemoved      = "Movie removed successfully"
	msgUserRemoved       = "User removed successfully"
	msgRouteNotFound     = "Route not found"
	msgMethodNotAllowed  = "Method not allowed"
	msgRatingRequired    = "rating is required"
	msgServiceNotReady   = "Service not ready"
	duplicateKeyTemplate = "This %s: %s is already exist!"
)

// sentinelError pairs a domain sentinel with its HTTP status. Clients see the
// sentinel's own text, never the wrapping context added on the way up.
type sentinelError struct {
	err    error
	status int
	code   string
}

var sentinelErrors = []sentinelError{
	{catalog.ErrMovieNotFound, http.StatusBadRequest, ErrCodeBadRequest},
	{catalog.ErrInvalidRating, http.StatusBadRequest, ErrCodeBadRequest},
	{catalog.ErrInvalidReleaseDate, http.StatusBadRequest, ErrCodeBadRequest},
	{accounts.ErrUsernameTaken, http.StatusBadRequest, ErrCodeBadRequest},
	{accounts.ErrPasswordMismatch, http.StatusBadRequest, ErrCodeBadRequest},
	{accounts.ErrInvalidRole, http.StatusBadRequest, ErrCodeBadRequest},
	{accounts.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
	{accounts.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
}

func matchSentinel(err error) *sentinelError {
	for i := range sentinelErrors {
		if errors.Is(err, sentinelErrors[i].err) {
			return &sentinelErrors[i]
		}
	}
	return nil
}

// writeServiceError maps a domain error to a status and envelope. Unknown
// errors are logged and reported as INTERNAL_ERROR.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if m := matchSentinel(err); m != nil {
		respondError(w, r, m.status, m.code, m.err.Error())
		return
	}

	var (
		verr   *validation.RequestValidationError
		dupErr *database.DuplicateKeyError
		maxErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verr):
		respondValidationError(w, verr)

	case errors.As(err, &dupErr):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Sprintf(duplicateKeyTemplate, dupErr.Key, dupErr.Value))

	case errors.As(err, &maxErr):
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, msgBodyTooLarge)

	case errors.Is(err, syncpkg.ErrSyncRunning):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, msgSyncRunning)

	case errors.Is(err, syncpkg.ErrNotStarted):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgSyncUnavailable)

	default:
		logging.Ctx(r.Context()).Error().
			Str("error", sanitizeLogValue(err.Error())).
			Str("method", r.Method).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("Unhandled API error")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, msgInternal)
	}
}
