// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Response messages.
const (
	MsgUserCreated  = "User Created Successfully"
	MsgUserLoggedIn = "User Logged In Successfully"
)

// UserStore is the persistence the service needs. *database.UserStore
// implements it.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindActiveByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	List(ctx context.Context, q models.UserListQuery) ([]models.User, int64, error)
	Update(ctx context.Context, id bson.ObjectID, set bson.D) (*models.User, error)
	SoftDelete(ctx context.Context, id bson.ObjectID) error
	ToggleFavorite(ctx context.Context, id bson.ObjectID, movieID string) (*models.User, error)
}

// PasswordHasher hashes and checks passwords. *auth.PasswordHasher implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
	BurnVerify(password string)
}

// TokenIssuer signs session tokens. *auth.JWTManager implements it.
type TokenIssuer interface {
	GenerateToken(user *models.User) (string, error)
}

// MovieChecker confirms a movie is active. *catalog.Service implements it.
type MovieChecker interface {
	Exists(ctx context.Context, id string) error
}

// Service implements the account operations.
type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	movies MovieChecker
}

// NewService creates the account service.
func NewService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, movies MovieChecker) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, movies: movies}
}

// Register creates a user account with role user and signs it in.
func (s *Service) Register(ctx context.Context, in *models.RegisterInput) (*models.AuthResponse, error) {
	username := strings.TrimSpace(in.Username)

	existing, err := s.users.FindActiveByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		return nil, ErrUsernameTaken
	case err != nil && !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       username,
		PasswordHash:   hash,
		Name:           strings.TrimSpace(in.Name),
		Role:           models.RoleUser,
		FavoriteMovies: []string{},
	}
	// A removed account keeps its username; the unique index reports it as
	// *database.DuplicateKeyError.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.Hex()).Str("username", user.Username).Msg("User registered")
	return &models.AuthResponse{Message: MsgUserCreated, User: user.ToResponse(), Token: token}, nil
}

// Login checks credentials and issues a token. Unknown users, removed users
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in *models.LoginInput) (*models.AuthResponse, error) {
	username := strings.TrimSpace(in.Username)

	user, err := s.users.FindActiveByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("lookup username: %w", err)
		}
		s.hasher.BurnVerify(in.Password)
		metrics.RecordAuthAttempt("password", false)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		metrics.RecordAuthAttempt("password", false)
		logging.Ctx(ctx).Debug().Str("username", username).Msg("Login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.RecordAuthAttempt("password", true)
	return &models.AuthResponse{Message: MsgUserLoggedIn, User: user.ToResponse(), Token: token}, nil
}

// FindActiveUser returns the non-removed user with hex id.
func (s *Service) FindActiveUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Removed {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ToggleFavorite adds movieID to the user's favorites, or removes it when
// already present. Only additions require an active movie, so favorites of
// since-removed movies can still be dropped.
func (s *Service) ToggleFavorite(ctx context.Context, userID, movieID string) (*models.User, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	mid, err := bson.ObjectIDFromHex(movieID)
	if err != nil {
		return nil, catalog.ErrMovieNotFound
	}

	current, err := s.FindActiveUser(ctx, uid.Hex())
	if err != nil {
		return nil, err
	}
	if !current.HasFavorite(mid.Hex()) {
		if err := s.movies.Exists(ctx, mid.Hex()); err != nil {
			return nil, err
		}
	}

	user, err := s.users.ToggleFavorite(ctx, uid, mid.Hex())
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// List pages accounts for administrators.
func (s *Service) List(ctx context.Context, q models.UserListQuery) (*models.UserPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	users, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	page := &models.UserPage{Data: make([]models.AdminUserView, 0, len(users)), Total: total}
	for i := range users {
		page.Data = append(page.Data, users[i].ToAdminView())
	}
	return page, nil
}

// Get returns any account, removed or not.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, id)
}

// Update changes an active account's name or role.
func (s *Service) Update(ctx context.Context, id string, in *models.UpdateUserInput) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	set := bson.D{}
	if in.Name != nil {
		set = append(set, bson.E{Key: "name", Value: strings.TrimSpace(*in.Name)})
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, ErrInvalidRole
		}
		set = append(set, bson.E{Key: "role", Value: *in.Role})
	}

	user, err := s.users.Update(ctx, oid, set)
	if err != nil {
		return nil, notFound(err)
	}
	logging.Ctx(ctx).Info().Str("target_user_id", id).Int("fields", len(set)).Msg("User updated")
	return user, nil
}

// Remove soft-deletes an account. Tokens held by the account stop working
// on the next request.
func (s *Service) Remove(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}
	if err := s.users.SoftDelete(ctx, oid); err != nil {
		return notFound(err)
	}
	logging.Ctx(ctx).Info().Str("target_user_id", id).Msg("User removed")
	return nil
}

// EnsureAdmin creates the bootstrap administrator when username and password
// are both set. An existing active account with that username is promoted to
// admin instead; its password is left alone.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	existing, err := s.users.FindActiveByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		if _, err := s.users.Update(ctx, existing.ID, bson.D{{Key: "role", Value: models.RoleAdmin}}); err != nil {
			return fmt.Errorf("promote %s: %w", username, err)
		}
		logging.Info().Str("username", username).Msg("Promoted existing account to admin")
		return nil
	case !errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("lookup admin account: %w", err)
	}

	if err := config.DefaultPasswordPolicy().ValidateWithError(password, username); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:       username,
		PasswordHash:   hash,
		Name:           username,
		Role:           models.RoleAdmin,
		FavoriteMovies: []string{},
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	logging.Info().Str("username", username).Str("user_id", admin.ID.Hex()).Msg("Created admin account")
	return nil
}

func (s *Service) findUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func notFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
