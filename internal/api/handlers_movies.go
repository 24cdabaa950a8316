// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/models"
)

// movieMutationResponse reports an admin write.
type movieMutationResponse struct {
	Message string        `json:"message"`
	Movie   *models.Movie `json:"movie,omitempty"`
}

// ListMovies returns one page of the catalog with the caller's favorites marked.
//
// Query parameters: searchField, searchText, page, limit, sort (field or
// -field), genre (repeatable or comma separated).
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := h.movies.NormalizeQuery(parseListQuery(r))
	if !validateRequest(w, &q) {
		return
	}

	page, cached, err := h.movies.List(r.Context(), q, favoritesOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, page, start, cached)
}

// GetMovie returns one active movie.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	movie, cached, err := h.movies.Get(r.Context(), chi.URLParam(r, "id"), favoritesOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, movie, start, cached)
}

// CreateMovie adds an admin-authored movie.
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in models.CreateMovieInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	movie, err := h.movies.Create(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.recordAction(r, audit.EventTypeMovieCreated, movieTarget(movie), "Movie created")
	respondSuccess(w, http.StatusCreated, movie, start, false)
}

// UpdateMovie applies a partial update.
func (h *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in models.UpdateMovieInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	movie, err := h.movies.Update(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.recordAction(r, audit.EventTypeMovieModified, movieTarget(movie), "Movie updated")
	respondSuccess(w, http.StatusOK, movieMutationResponse{Message: msgMovieUpdated, Movie: movie}, start, false)
}

// RemoveMovie soft-deletes a movie.
func (h *Handler) RemoveMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := chi.URLParam(r, "id")
	if err := h.movies.Remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.recordAction(r, audit.EventTypeMovieDeleted, &audit.Target{ID: id, Type: "movie"}, "Movie removed")
	respondSuccess(w, http.StatusOK, movieMutationResponse{Message: msgMovieRemoved}, start, false)
}

// RateMovie records the caller's rating. Range errors come from the catalog
// so they carry its message rather than the validator's.
func (h *Handler) RateMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in models.RateInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Rating == nil {
		respondErrorDetails(w, http.StatusBadRequest, &models.APIError{
			Code:    ErrCodeValidation,
			Message: msgRatingRequired,
			Details: map[string]interface{}{"field": "rating", "tag": "required"},
		})
		return
	}

	movie, err := h.movies.Rate(r.Context(), chi.URLParam(r, "id"), *in.Rating)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, movie, start, false)
}

func movieTarget(m *models.Movie) *audit.Target {
	return &audit.Target{ID: m.ID.Hex(), Type: "movie", Name: m.Title}
}
