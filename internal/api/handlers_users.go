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

// Register creates an account and returns it with a session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in models.RegisterInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	resp, err := h.accounts.Register(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if h.audit != nil {
		h.audit.LogAction(r.Context(), audit.EventTypeUserCreated,
			audit.ActorFromUser(resp.User.ID, resp.User.Username, string(models.RoleUser)),
			&audit.Target{ID: resp.User.ID, Type: "user", Name: resp.User.Username},
			audit.SourceFromRequest(r), "User registered")
	}
	respondSuccess(w, http.StatusCreated, resp, start, false)
}

// Login exchanges credentials for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in models.LoginInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	resp, err := h.accounts.Login(r.Context(), &in)
	if err != nil {
		if h.audit != nil {
			h.audit.LogAuthFailure(r.Context(), in.Username, err.Error(), audit.SourceFromRequest(r))
		}
		writeServiceError(w, r, err)
		return
	}
	if h.audit != nil {
		h.audit.LogAuthSuccess(r.Context(),
			audit.Actor{ID: resp.User.ID, Type: "user", Name: resp.User.Username},
			audit.SourceFromRequest(r))
	}
	respondSuccess(w, http.StatusOK, resp, start, false)
}

// Me returns the caller's profile as loaded by authentication.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject := requireSubject(w, r)
	if subject == nil {
		return
	}
	respondSuccess(w, http.StatusOK, subject.User.ToResponse(), time.Time{}, false)
}

// ToggleFavorite adds or removes a movie from the caller's favorites.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := requireSubject(w, r)
	if subject == nil {
		return
	}

	user, err := h.accounts.ToggleFavorite(r.Context(), subject.ID, chi.URLParam(r, "movieId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, user.ToResponse(), start, false)
}

// ListUsers pages accounts for administrators.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := parseUserListQuery(r)
	if !validateRequest(w, &q) {
		return
	}

	page, err := h.accounts.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, page, start, false)
}

// GetUser returns one account, including removed ones.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, user.ToAdminView(), start, false)
}

// UpdateUser changes an account's name or role.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in models.UpdateUserInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	user, err := h.accounts.Update(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.recordAction(r, audit.EventTypeUserModified,
		&audit.Target{ID: user.ID.Hex(), Type: "user", Name: user.Username}, "User updated")
	respondSuccess(w, http.StatusOK, user.ToAdminView(), start, false)
}

// RemoveUser soft-deletes an account.
func (h *Handler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := chi.URLParam(r, "id")
	if err := h.accounts.Remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.recordAction(r, audit.EventTypeUserDeleted, &audit.Target{ID: id, Type: "user"}, "User removed")
	respondSuccess(w, http.StatusOK, models.MessageResponse{Message: msgUserRemoved}, start, false)
}
