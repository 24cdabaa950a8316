// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/models"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

// testJWTConfig returns a standard test security config for JWT
func testJWTConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: 1 * time.Hour,
	}
}

func testUser(role models.Role) *models.User {
	return &models.User{
		ID:       bson.NewObjectID(),
		Username: "trinity",
		Name:     "Trinity",
		Role:     role,
	}
}

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.SecurityConfig
		wantErr     bool
		wantTimeout time.Duration
	}{
		{
			name:        "valid secret",
			cfg:         testJWTConfig(),
			wantTimeout: time.Hour,
		},
		{
			name:        "zero timeout defaults to five days",
			cfg:         &config.SecurityConfig{JWTSecret: testSecret},
			wantTimeout: 120 * time.Hour,
		},
		{
			name:    "empty secret",
			cfg:     &config.SecurityConfig{SessionTimeout: time.Hour},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if manager.Timeout() != tt.wantTimeout {
				t.Errorf("Timeout() = %v, want %v", manager.Timeout(), tt.wantTimeout)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager(testJWTConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			user := testUser(role)

			token, err := manager.GenerateToken(user)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if strings.Count(token, ".") != 2 {
				t.Fatalf("token %q is not a compact JWS", token)
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.UserID != user.ID.Hex() || claims.Subject != user.ID.Hex() {
				t.Errorf("claims id = %s/%s, want %s", claims.UserID, claims.Subject, user.ID.Hex())
			}
			if claims.Username != user.Username {
				t.Errorf("username = %v, want %v", claims.Username, user.Username)
			}
			if claims.Role != string(role) {
				t.Errorf("role = %v, want %v", claims.Role, role)
			}
			if claims.Issuer != Issuer {
				t.Errorf("issuer = %v, want %v", claims.Issuer, Issuer)
			}
		})
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	manager, _ := NewJWTManager(testJWTConfig())
	user := testUser(models.RoleUser)

	other, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "a-completely-different-secret-of-32-chars!",
		SessionTimeout: time.Hour,
	})
	foreign, _ := other.GenerateToken(user)

	expiredManager, _ := NewJWTManager(testJWTConfig())
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredManager.GenerateToken(user)

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	}).SignedString([]byte(testSecret))

	noUserID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", noneToken},
		{"hs512", hs512},
		{"missing exp", noExpiry},
		{"missing user id", noUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.ValidateToken(tt.token); err == nil {
				t.Error("ValidateToken() expected error, got nil")
			}
		})
	}
}
