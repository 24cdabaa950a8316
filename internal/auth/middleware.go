// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Response messages for authentication failures.
const (
	MsgUnauthorized = "Unauthorized"
	MsgInvalidUser  = "Invalid user"
	MsgLookupFailed = "Internal server error"
)

// UserLookup loads the account named by a token. Implementations return an
// error wrapping ErrUserNotFound when the user does not exist or was removed.
// Any other error is treated as a storage failure.
type UserLookup interface {
	FindActiveUser(ctx context.Context, id string) (*models.User, error)
}

// ErrorResponder writes an error envelope. The API layer supplies its own so
// auth failures look like every other error.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware provides bearer token authentication.
type Middleware struct {
	jwtManager *JWTManager
	users      UserLookup
	respond    ErrorResponder
}

// NewMiddleware creates the authentication middleware. A nil respond falls
// back to http.Error.
func NewMiddleware(jwtManager *JWTManager, users UserLookup, respond ErrorResponder) *Middleware {
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		jwtManager: jwtManager,
		users:      users,
		respond:    respond,
	}
}

// Authenticate rejects requests without a valid bearer token for an active user.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			metrics.RecordAuthAttempt("jwt", false)
			m.respond(w, r, http.StatusUnauthorized, "UNAUTHORIZED", MsgUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			metrics.RecordAuthAttempt("jwt", false)
			m.respond(w, r, http.StatusUnauthorized, "UNAUTHORIZED", MsgUnauthorized)
			return
		}

		user, err := m.users.FindActiveUser(r.Context(), claims.UserID)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			logging.Ctx(r.Context()).Error().Err(err).Str("user_id", claims.UserID).Msg("Token user lookup failed")
			m.respond(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", MsgLookupFailed)
			return
		}
		if user == nil {
			logging.Ctx(r.Context()).Debug().Err(err).Str("user_id", claims.UserID).Msg("Token user not found")
			metrics.RecordAuthAttempt("jwt", false)
			m.respond(w, r, http.StatusUnauthorized, "UNAUTHORIZED", MsgInvalidUser)
			return
		}

		metrics.RecordAuthAttempt("jwt", true)
		subject := SubjectFromUser(user, claims)
		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUserID(ctx, subject.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken parses "Bearer <token>". The scheme is case-insensitive.
func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoCredentials
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidCredentials
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrNoCredentials
	}
	return token, nil
}
