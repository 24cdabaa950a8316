// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import (
	"net/http"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
)

// MsgForbidden is returned when the subject's role lacks the permission.
const MsgForbidden = "Forbidden"

// DeniedFunc observes requests rejected with 403.
type DeniedFunc func(r *http.Request, subject *auth.AuthSubject, object, action string)

// Middleware enforces role permissions on authenticated routes.
type Middleware struct {
	enforcer *Enforcer
	respond  auth.ErrorResponder
	onDenied DeniedFunc
}

// NewMiddleware creates a new authorization middleware. A nil respond falls
// back to http.Error.
func NewMiddleware(enforcer *Enforcer, respond auth.ErrorResponder) *Middleware {
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		enforcer: enforcer,
		respond:  respond,
	}
}

// OnDenied registers fn to be called for every denied request.
func (m *Middleware) OnDenied(fn DeniedFunc) {
	m.onDenied = fn
}

// Authorize returns middleware that requires permission for action on object.
// It must run after auth.Middleware.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				m.respond(w, r, http.StatusUnauthorized, "UNAUTHORIZED", auth.MsgUnauthorized)
				return
			}

			allowed, err := m.enforcer.Enforce(string(subject.Role), object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).
					Str("object", object).
					Str("action", action).
					Msg("Authorization error")
				m.respond(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}

			if !allowed {
				logging.Ctx(r.Context()).Debug().
					Str("role", string(subject.Role)).
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				if m.onDenied != nil {
					m.onDenied(r, subject, object, action)
				}
				m.respond(w, r, http.StatusForbidden, "FORBIDDEN", MsgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole is a coarse gate for routes that do not map to a single object.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				m.respond(w, r, http.StatusUnauthorized, "UNAUTHORIZED", auth.MsgUnauthorized)
				return
			}
			if string(subject.Role) != role {
				roles, err := m.enforcer.GetImplicitRoles(string(subject.Role))
				if err != nil || !contains(roles, role) {
					m.respond(w, r, http.StatusForbidden, "FORBIDDEN", MsgForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
