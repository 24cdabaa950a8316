// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// makeBasicAuthHeader creates a Basic Auth header value
func makeBasicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func TestNewBasicAuthManager_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		errorMsg string
	}{
		{"empty username", "", "scrape-password", "username is required"},
		{"empty password", "prometheus", "", "password is required"},
		{"short password", "prometheus", "1234567", "at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := newBasicAuthManagerForTest(tt.username, tt.password)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.errorMsg)
			}
			if manager != nil {
				t.Error("Expected nil manager on error")
			}
		})
	}
}

func TestNewBasicAuthManager_ProductionCost(t *testing.T) {
	manager, err := NewBasicAuthManager("prometheus", "scrape-password")
	if err != nil {
		t.Fatalf("NewBasicAuthManager() error = %v", err)
	}
	if !strings.HasPrefix(string(manager.passwordHash), "$2a$12$") {
		t.Errorf("hash %q not produced with cost 12", manager.passwordHash)
	}
}

func TestValidateCredentials(t *testing.T) {
	manager, err := newBasicAuthManagerForTest("prometheus", "scrape:password")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantUser   string
	}{
		{"valid credentials with colon in password", makeBasicAuthHeader("prometheus", "scrape:password"), "prometheus"},
		{"wrong password", makeBasicAuthHeader("prometheus", "scrape"), ""},
		{"wrong username", makeBasicAuthHeader("grafana", "scrape:password"), ""},
		{"case sensitive username", makeBasicAuthHeader("Prometheus", "scrape:password"), ""},
		{"missing Basic prefix", base64.StdEncoding.EncodeToString([]byte("prometheus:scrape:password")), ""},
		{"bearer scheme", "Bearer abc", ""},
		{"invalid base64", "Basic !!invalid!!", ""},
		{"missing colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("prometheus")), ""},
		{"empty header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username, err := manager.ValidateCredentials(tt.authHeader)
			if tt.wantUser != "" {
				if err != nil {
					t.Fatalf("Expected valid credentials, got error: %v", err)
				}
				if username != tt.wantUser {
					t.Errorf("username = %s, want %s", username, tt.wantUser)
				}
				return
			}
			if err == nil {
				t.Errorf("Expected error, got username %q", username)
			}
			if username != "" {
				t.Errorf("Expected empty username on error, got %s", username)
			}
		})
	}
}

func TestGetWWWAuthenticateHeader(t *testing.T) {
	manager, err := newBasicAuthManagerForTest("prometheus", "password123")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	header := manager.GetWWWAuthenticateHeader()
	if header != `Basic realm="Marquee", charset="UTF-8"` {
		t.Errorf("header = %s", header)
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	manager, err := newBasicAuthManagerForTest("prometheus", "scrape-password")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# HELP"))
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", makeBasicAuthHeader("prometheus", "scrape-password"), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong password", makeBasicAuthHeader("prometheus", "nope-nope"), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate challenge")
			}
		})
	}
}
