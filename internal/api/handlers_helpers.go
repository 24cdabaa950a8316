// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/validation"
)

// decodeAndValidate decodes the JSON body into dst and validates it. On
// failure the error response is already written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decodeBody(w, r, dst) && validateRequest(w, dst)
}

// decodeBody decodes the JSON body into dst, writing 413 or VALIDATION_ERROR
// on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(r, dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, msgBodyTooLarge)
			return false
		}
		logging.Ctx(r.Context()).Debug().Str("error", sanitizeLogValue(err.Error())).Msg("Rejected request body")
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, msgInvalidBody)
		return false
	}
	return true
}

// validateRequest runs the struct validator, writing VALIDATION_ERROR on failure.
func validateRequest(w http.ResponseWriter, v interface{}) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		respondValidationError(w, verr)
		return false
	}
	return true
}

// favoritesOf returns the caller's favorites set, or nil for anonymous requests.
func favoritesOf(r *http.Request) map[string]struct{} {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil || subject.User == nil {
		return nil
	}
	return subject.User.FavoriteSet()
}

// requireSubject returns the authenticated caller or writes 401.
func requireSubject(w http.ResponseWriter, r *http.Request) *auth.AuthSubject {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, auth.MsgUnauthorized)
		return nil
	}
	return subject
}
