// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/models"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// MovieService is the catalog surface used by handlers. *catalog.Service
// implements it.
type MovieService interface {
	NormalizeQuery(q models.ListQuery) models.ListQuery
	List(ctx context.Context, q models.ListQuery, favorites map[string]struct{}) (*models.MoviePage, bool, error)
	Get(ctx context.Context, id string, favorites map[string]struct{}) (*models.Movie, bool, error)
	Create(ctx context.Context, in *models.CreateMovieInput) (*models.Movie, error)
	Update(ctx context.Context, id string, in *models.UpdateMovieInput) (*models.Movie, error)
	Remove(ctx context.Context, id string) error
	Rate(ctx context.Context, id string, rating float64) (*models.Movie, error)
}

// AccountService is the account surface used by handlers. *accounts.Service
// implements it.
type AccountService interface {
	Register(ctx context.Context, in *models.RegisterInput) (*models.AuthResponse, error)
	Login(ctx context.Context, in *models.LoginInput) (*models.AuthResponse, error)
	ToggleFavorite(ctx context.Context, userID, movieID string) (*models.User, error)
	List(ctx context.Context, q models.UserListQuery) (*models.UserPage, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, in *models.UpdateUserInput) (*models.User, error)
	Remove(ctx context.Context, id string) error
}

// SyncController triggers and reports catalog syncs. *sync.Manager
// implements it.
type SyncController interface {
	Trigger() error
	Status() models.SyncStatus
}

// Pinger reports database reachability. *database.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_users.go: registration, login, profile, favorites, user admin
//   - handlers_movies.go: catalog reads and admin writes, ratings
//   - handlers_sync.go: sync trigger, status and the progress stream
//   - handlers_health.go: liveness and readiness
//   - handlers_audit.go: audit trail listing and recording
type Handler struct {
	movies    MovieService
	accounts  AccountService
	sync      SyncController
	audit     Auditor
	hub       *ws.Hub
	origins   []string
	db        Pinger
	version   string
	startTime time.Time
}

// HandlerDeps groups the handler dependencies. Sync may be nil when no TMDB
// key is configured and Audit may be nil when AUDIT_ENABLED is false; the
// matching routes then answer 503.
type HandlerDeps struct {
	Movies   MovieService
	Accounts AccountService
	Sync     SyncController
	Audit    Auditor
	DB       Pinger
	Version  string

	// Hub streams sync progress on /sync/events. Nil disables the stream.
	Hub *ws.Hub

	// AllowedOrigins is checked against the Origin of websocket upgrades.
	AllowedOrigins []string
}

// NewHandler creates a new API handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		movies:    deps.Movies,
		accounts:  deps.Accounts,
		sync:      deps.Sync,
		audit:     deps.Audit,
		hub:       deps.Hub,
		origins:   deps.AllowedOrigins,
		db:        deps.DB,
		version:   deps.Version,
		startTime: time.Now(),
	}
}
