// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"

	"github.com/tomtom215/marquee/internal/models"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned by a UserLookup when the token's user does
	// not exist or was removed.
	ErrUserNotFound = errors.New("User Not Found") //nolint:staticcheck // client-facing message
)

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// AuthSubject is the authenticated caller.
type AuthSubject struct {
	// ID is the user's hex ObjectID.
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`

	// User is the account as loaded during authentication.
	User *models.User `json:"-"`

	IssuedAt  int64 `json:"issued_at,omitempty"`
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// HasRole checks if the subject has a specific role.
func (s *AuthSubject) HasRole(role models.Role) bool {
	return s != nil && s.Role == role
}

// IsAdmin reports whether the subject is an administrator.
func (s *AuthSubject) IsAdmin() bool {
	return s.HasRole(models.RoleAdmin)
}

// SubjectFromUser builds a subject from an account and the token that proved it.
// The role comes from the stored account, not the token, so demotions apply
// without waiting for the token to expire.
func SubjectFromUser(user *models.User, claims *Claims) *AuthSubject {
	s := &AuthSubject{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Role:     user.Role,
		User:     user,
	}
	if claims != nil {
		if claims.IssuedAt != nil {
			s.IssuedAt = claims.IssuedAt.Unix()
		}
		if claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Unix()
		}
	}
	return s
}

// ContextWithSubject stores subject in ctx.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// GetAuthSubject returns the authenticated subject, or nil.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	s, _ := ctx.Value(subjectContextKey).(*AuthSubject)
	return s
}
