// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is a user's authorization role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the stored account document. It is never serialized to clients;
// use ToResponse or ToAdminView.
type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Username       string        `bson:"username"`
	PasswordHash   string        `bson:"passwordHash"`
	Name           string        `bson:"name"`
	Role           Role          `bson:"role"`
	Removed        bool          `bson:"removed"`
	FavoriteMovies []string      `bson:"favoriteMovies"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

// HasFavorite reports whether movieID is in the user's favorites.
func (u *User) HasFavorite(movieID string) bool {
	for _, id := range u.FavoriteMovies {
		if id == movieID {
			return true
		}
	}
	return false
}

// FavoriteSet returns the favorites as a set for per-movie lookups.
func (u *User) FavoriteSet() map[string]struct{} {
	set := make(map[string]struct{}, len(u.FavoriteMovies))
	for _, id := range u.FavoriteMovies {
		set[id] = struct{}{}
	}
	return set
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	FavoriteMovies []string  `json:"favoriteMovies"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToResponse builds the public projection.
func (u *User) ToResponse() UserResponse {
	favs := u.FavoriteMovies
	if favs == nil {
		favs = []string{}
	}
	return UserResponse{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		Name:           u.Name,
		FavoriteMovies: favs,
		CreatedAt:      u.CreatedAt,
	}
}

// AdminUserView is what administrators see when managing accounts.
type AdminUserView struct {
	UserResponse
	Role      Role      `json:"role"`
	Removed   bool      `json:"removed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToAdminView builds the administrator projection.
func (u *User) ToAdminView() AdminUserView {
	return AdminUserView{
		UserResponse: u.ToResponse(),
		Role:         u.Role,
		Removed:      u.Removed,
		UpdatedAt:    u.UpdatedAt,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// RegisterInput is the registration body.
type RegisterInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,max=72"`
}

// LoginInput is the login body.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

// UpdateUserInput is the admin user patch.
type UpdateUserInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Role *Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

// UserListQuery pages the admin user listing.
type UserListQuery struct {
	Page           int  `query:"page" validate:"min=1"`
	Limit          int  `query:"limit" validate:"min=1,max=100"`
	IncludeRemoved bool `query:"includeRemoved"`
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Data  []AdminUserView `json:"data"`
	Total int64           `json:"total"`
}
