// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	metricsAuth   *auth.BasicAuthManager
	chiMiddleware *ChiMiddleware
	maxBodyBytes  int64
}

// RouterDeps groups the Router dependencies. MetricsAuth may be nil, which
// leaves /metrics unregistered.
type RouterDeps struct {
	Handler       *Handler
	Authn         *auth.Middleware
	Authz         *authz.Middleware
	MetricsAuth   *auth.BasicAuthManager
	ChiMiddleware *ChiMiddleware
	MaxBodyBytes  int64
}

// NewRouter creates a router.
func NewRouter(deps RouterDeps) *Router {
	chiMW := deps.ChiMiddleware
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       deps.Handler,
		authn:         deps.Authn,
		authz:         deps.Authz,
		metricsAuth:   deps.MetricsAuth,
		chiMiddleware: chiMW,
		maxBodyBytes:  deps.MaxBodyBytes,
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.BodyLimit(router.maxBodyBytes))
	r.Use(chiMiddleware(middleware.Compression))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, msgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, msgMethodNotAllowed)
	})

	if router.metricsAuth != nil {
		r.With(router.metricsAuth.Middleware).Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// ========================
		// Health Endpoints
		// ========================
		r.Route("/health", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHealth())
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		// ========================
		// Users
		// ========================
		r.Route("/users", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitAuth()).Post("/register", h.Register)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimit())
				r.Use(router.authn.Authenticate)

				r.With(router.authorize(authz.ObjProfile, authz.ActRead)).Get("/me", h.Me)
				r.With(router.authorize(authz.ObjFavorites, authz.ActWrite)).Post("/favorites/{movieId}", h.ToggleFavorite)

				r.With(router.authorize(authz.ObjUsers, authz.ActRead)).Get("/", h.ListUsers)
				r.With(router.authorize(authz.ObjUsers, authz.ActRead)).Get("/{id}", h.GetUser)
				r.With(router.authorize(authz.ObjUsers, authz.ActWrite)).Patch("/{id}", h.UpdateUser)
				r.With(router.authorize(authz.ObjUsers, authz.ActDelete)).Delete("/{id}", h.RemoveUser)
			})
		})

		// ========================
		// Movies
		// ========================
		r.Route("/movies", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.authn.Authenticate)

			r.With(router.authorize(authz.ObjMovies, authz.ActRead)).Get("/", h.ListMovies)
			r.With(router.authorize(authz.ObjMovies, authz.ActRead)).Get("/{id}", h.GetMovie)
			r.With(router.authorize(authz.ObjMovies, authz.ActWrite)).Post("/", h.CreateMovie)
			r.With(router.authorize(authz.ObjMovies, authz.ActWrite)).Patch("/{id}", h.UpdateMovie)
			r.With(router.authorize(authz.ObjMovies, authz.ActDelete)).Delete("/{id}", h.RemoveMovie)
			r.With(router.authorize(authz.ObjRatings, authz.ActWrite)).Post("/{id}/rate", h.RateMovie)
		})

		// ========================
		// Catalog Sync
		// ========================
		r.Route("/sync", func(r chi.Router) {
			r.Use(router.authn.Authenticate)

			r.With(
				router.chiMiddleware.RateLimitSync(),
				router.authorize(authz.ObjSync, authz.ActWrite),
			).Post("/tmdb", h.TriggerSync)
			r.With(router.authorize(authz.ObjSync, authz.ActRead)).Get("/status", h.SyncStatus)
			r.With(router.authorize(authz.ObjSync, authz.ActRead)).Get("/events", h.SyncEvents)
		})

		// ========================
		// Audit Trail
		// ========================
		r.Route("/audit", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.authn.Authenticate)

			r.With(router.authorize(authz.ObjAudit, authz.ActRead)).Get("/", h.ListAuditEvents)
		})
	})

	return r
}

func (router *Router) authorize(object, action string) func(http.Handler) http.Handler {
	return router.authz.Authorize(object, action)
}
