// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/tomtom215/marquee/internal/accounts"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/models"
	syncpkg "github.com/tomtom215/marquee/internal/sync"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	valid := models.RegisterInput{Name: "New", Username: "newbie", Password: "Passw0rd!", ConfirmPassword: "Passw0rd!"}

	rr := ts.do(http.MethodPost, "/api/v1/users/register", valid, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	var resp models.AuthResponse
	decodeData(t, rr, &resp)
	if resp.Message != accounts.MsgUserCreated {
		t.Errorf("message = %q, want %q", resp.Message, accounts.MsgUserCreated)
	}
	if resp.Token == "" || resp.User.Username != "newbie" {
		t.Errorf("unexpected response %+v", resp)
	}
	if _, err := ts.tokens.ValidateToken(resp.Token); err != nil {
		t.Errorf("issued token does not validate: %v", err)
	}

	tests := []struct {
		name    string
		body    interface{}
		status  int
		code    string
		message string
	}{
		{"duplicate username", valid, http.StatusBadRequest, ErrCodeBadRequest, "Username Already Exist"},
		{"password mismatch", models.RegisterInput{Name: "A", Username: "other", Password: "a", ConfirmPassword: "b"},
			http.StatusBadRequest, ErrCodeBadRequest, "Password Not Match"},
		{"missing fields", map[string]string{"username": "abc"}, http.StatusBadRequest, ErrCodeValidation, ""},
		{"malformed json", `{"username":`, http.StatusBadRequest, ErrCodeValidation, msgInvalidBody},
		{"empty body", nil, http.StatusBadRequest, ErrCodeValidation, msgInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(http.MethodPost, "/api/v1/users/register", tt.body, nil)
			assertError(t, rr, tt.status, tt.code, tt.message)
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/v1/users/login", models.LoginInput{Username: "viewer", Password: "correct-password"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var resp models.AuthResponse
	decodeData(t, rr, &resp)
	if resp.Message != accounts.MsgUserLoggedIn || resp.Token == "" {
		t.Errorf("unexpected response %+v", resp)
	}

	rr = ts.do(http.MethodPost, "/api/v1/users/login", models.LoginInput{Username: "viewer", Password: "nope"}, nil)
	assertError(t, rr, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid Email or password")
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/v1/users/me", nil, ts.user)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var me models.UserResponse
	decodeData(t, rr, &me)
	if me.ID != ts.user.ID.Hex() || me.Username != "viewer" {
		t.Errorf("me = %+v", me)
	}
	if me.FavoriteMovies == nil {
		t.Error("favoriteMovies should serialize as an empty list")
	}
}

func TestToggleFavorite(t *testing.T) {
	ts := newTestServer(t)
	movie := seedMovie("Alien", "Horror")
	ts.movies.movies[movie.ID.Hex()] = movie
	path := "/api/v1/users/favorites/" + movie.ID.Hex()

	rr := ts.do(http.MethodPost, path, nil, ts.user)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var u models.UserResponse
	decodeData(t, rr, &u)
	if !reflect.DeepEqual(u.FavoriteMovies, []string{movie.ID.Hex()}) {
		t.Errorf("favorites after add = %v", u.FavoriteMovies)
	}

	rr = ts.do(http.MethodGet, "/api/v1/movies/"+movie.ID.Hex(), nil, ts.user)
	var got models.Movie
	decodeData(t, rr, &got)
	if !got.IsFavorite {
		t.Error("isFavorite = false after adding favorite")
	}

	rr = ts.do(http.MethodPost, path, nil, ts.user)
	decodeData(t, rr, &u)
	if len(u.FavoriteMovies) != 0 {
		t.Errorf("favorites after second toggle = %v, want empty", u.FavoriteMovies)
	}

	rr = ts.do(http.MethodPost, "/api/v1/users/favorites/not-an-id", nil, ts.user)
	assertError(t, rr, http.StatusBadRequest, ErrCodeBadRequest, "Movie Not Found")
}

func TestUserAdministration(t *testing.T) {
	ts := newTestServer(t)
	userPath := "/api/v1/users/" + ts.user.ID.Hex()

	rr := ts.do(http.MethodGet, userPath, nil, ts.admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d (body %s)", rr.Code, rr.Body.String())
	}
	var view models.AdminUserView
	decodeData(t, rr, &view)
	if view.Role != models.RoleUser || view.Username != "viewer" {
		t.Errorf("view = %+v", view)
	}

	rr = ts.do(http.MethodPatch, userPath, map[string]string{"role": "admin"}, ts.admin)
	decodeData(t, rr, &view)
	if view.Role != models.RoleAdmin {
		t.Errorf("role after patch = %q, want admin", view.Role)
	}

	rr = ts.do(http.MethodPatch, userPath, map[string]string{"role": "owner"}, ts.admin)
	assertError(t, rr, http.StatusBadRequest, ErrCodeValidation, "")

	rr = ts.do(http.MethodDelete, userPath, nil, ts.admin)
	var msg models.MessageResponse
	decodeData(t, rr, &msg)
	if msg.Message != msgUserRemoved {
		t.Errorf("message = %q", msg.Message)
	}

	rr = ts.do(http.MethodGet, "/api/v1/users?includeRemoved=true", nil, ts.admin)
	var page models.UserPage
	decodeData(t, rr, &page)
	if page.Total != 2 {
		t.Errorf("total with removed = %d, want 2", page.Total)
	}

	rr = ts.do(http.MethodGet, "/api/v1/users", nil, ts.admin)
	decodeData(t, rr, &page)
	if page.Total != 1 {
		t.Errorf("total without removed = %d, want 1", page.Total)
	}

	rr = ts.do(http.MethodGet, "/api/v1/users/64b000000000000000000099", nil, ts.admin)
	assertError(t, rr, http.StatusNotFound, ErrCodeNotFound, "User Not Found")
}

func TestListMovies(t *testing.T) {
	ts := newTestServer(t)
	fav := seedMovie("Up", "Animation")
	other := seedMovie("Rocky", "Drama")
	ts.movies.movies[fav.ID.Hex()] = fav
	ts.movies.movies[other.ID.Hex()] = other
	ts.accounts.users[ts.user.ID.Hex()].FavoriteMovies = []string{fav.ID.Hex()}

	rr := ts.do(http.MethodGet, "/api/v1/movies?genre=Drama,Animation&genre=Drama&limit=500&sort=-title", nil, ts.user)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rr.Code, rr.Body.String())
	}
	var page models.MoviePage
	env := decodeData(t, rr, &page)

	if env.Metadata.Cached {
		t.Error("metadata.cached = true on a miss")
	}
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
	for _, m := range page.Data {
		if want := m.ID == fav.ID; m.IsFavorite != want {
			t.Errorf("%s isFavorite = %v, want %v", m.Title, m.IsFavorite, want)
		}
	}

	q := ts.movies.lastList
	if !reflect.DeepEqual(q.Genre, []string{"Animation", "Drama"}) {
		t.Errorf("genre = %v, want normalized [Animation Drama]", q.Genre)
	}
	if q.Limit != 100 || q.Page != 1 || q.Sort != "-title" {
		t.Errorf("query = %+v", q)
	}

	ts.movies.cached = true
	rr = ts.do(http.MethodGet, "/api/v1/movies", nil, ts.user)
	env = decodeEnvelope(t, rr)
	if !env.Metadata.Cached {
		t.Error("metadata.cached = false on a hit")
	}

	tests := []struct {
		name  string
		query string
	}{
		{"unknown sort field", "?sort=password"},
		{"unknown search field", "?searchField=password&searchText=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(http.MethodGet, "/api/v1/movies"+tt.query, nil, ts.user)
			assertError(t, rr, http.StatusBadRequest, ErrCodeValidation, "")
		})
	}
}

func TestMovieAdministration(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/v1/movies", map[string]interface{}{
		"title": "Arrival", "genres": []string{"Science Fiction"}, "releaseDate": "2016-11-11",
	}, ts.admin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rr.Code, rr.Body.String())
	}
	var created models.Movie
	decodeData(t, rr, &created)
	path := "/api/v1/movies/" + created.ID.Hex()

	rr = ts.do(http.MethodPost, "/api/v1/movies", map[string]string{"overview": "no title"}, ts.admin)
	assertError(t, rr, http.StatusBadRequest, ErrCodeValidation, "")

	rr = ts.do(http.MethodPost, "/api/v1/movies", map[string]string{"title": "Bad", "releaseDate": "11/11/2016"}, ts.admin)
	assertError(t, rr, http.StatusBadRequest, ErrCodeValidation, "")

	rr = ts.do(http.MethodPatch, path, map[string]string{"title": "Arrival (2016)"}, ts.admin)
	var mutation movieMutationResponse
	decodeData(t, rr, &mutation)
	if mutation.Message != msgMovieUpdated || mutation.Movie == nil || mutation.Movie.Title != "Arrival (2016)" {
		t.Errorf("update response = %+v", mutation)
	}

	rr = ts.do(http.MethodDelete, path, nil, ts.admin)
	mutation = movieMutationResponse{}
	decodeData(t, rr, &mutation)
	if mutation.Message != msgMovieRemoved || mutation.Movie != nil {
		t.Errorf("remove response = %+v", mutation)
	}

	rr = ts.do(http.MethodGet, path, nil, ts.user)
	assertError(t, rr, http.StatusBadRequest, ErrCodeBadRequest, "Movie Not Found")

	rr = ts.do(http.MethodDelete, path, nil, ts.admin)
	assertError(t, rr, http.StatusBadRequest, ErrCodeBadRequest, "Movie Not Found")
}

func TestRateMovie(t *testing.T) {
	ts := newTestServer(t)
	movie := seedMovie("Jaws", "Thriller")
	ts.movies.movies[movie.ID.Hex()] = movie
	path := "/api/v1/movies/" + movie.ID.Hex() + "/rate"

	tests := []struct {
		name    string
		body    interface{}
		status  int
		code    string
		message string
	}{
		{"zero is a rating", `{"rating":0}`, http.StatusOK, "", ""},
		{"upper bound", `{"rating":10}`, http.StatusOK, "", ""},
		{"missing rating", `{}`, http.StatusBadRequest, ErrCodeValidation, msgRatingRequired},
		{"out of range", `{"rating":10.5}`, http.StatusBadRequest, ErrCodeBadRequest, "Rating must be between 0 and 10"},
		{"negative", `{"rating":-1}`, http.StatusBadRequest, ErrCodeBadRequest, "Rating must be between 0 and 10"},
		{"not a number", `{"rating":"high"}`, http.StatusBadRequest, ErrCodeValidation, msgInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(http.MethodPost, path, tt.body, ts.user)
			if tt.code == "" {
				if rr.Code != tt.status {
					t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.status, rr.Body.String())
				}
				return
			}
			assertError(t, rr, tt.status, tt.code, tt.message)
		})
	}

	if !reflect.DeepEqual(ts.movies.rated, []float64{0, 10}) {
		t.Errorf("ratings recorded = %v, want [0 10]", ts.movies.rated)
	}
}

func TestSyncEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/v1/sync/tmdb", nil, ts.admin)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("trigger status = %d (body %s)", rr.Code, rr.Body.String())
	}
	if ts.sync.triggered != 1 {
		t.Errorf("triggered = %d, want 1", ts.sync.triggered)
	}

	ts.sync.triggerErr = syncpkg.ErrSyncRunning
	rr = ts.do(http.MethodPost, "/api/v1/sync/tmdb", nil, ts.admin)
	assertError(t, rr, http.StatusConflict, ErrCodeConflict, msgSyncRunning)

	rr = ts.do(http.MethodGet, "/api/v1/sync/status", nil, ts.admin)
	var status models.SyncStatus
	decodeData(t, rr, &status)
	if !status.Enabled || status.Schedule != "@daily" {
		t.Errorf("status = %+v", status)
	}

	t.Run("not configured", func(t *testing.T) {
		ts := newTestServer(t, withoutSync())
		rr := ts.do(http.MethodPost, "/api/v1/sync/tmdb", nil, ts.admin)
		assertError(t, rr, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgSyncUnavailable)
		rr = ts.do(http.MethodGet, "/api/v1/sync/status", nil, ts.admin)
		assertError(t, rr, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgSyncUnavailable)
	})
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/v1/health/live", nil, nil)
	var live models.HealthResponse
	decodeData(t, rr, &live)
	if rr.Code != http.StatusOK || live.Status != "alive" || live.Version != "test" {
		t.Errorf("live = %d %+v", rr.Code, live)
	}

	rr = ts.do(http.MethodGet, "/api/v1/health/ready", nil, nil)
	var ready models.HealthResponse
	decodeData(t, rr, &ready)
	if rr.Code != http.StatusOK || !ready.Database {
		t.Errorf("ready = %d %+v", rr.Code, ready)
	}

	ts.db.err = errors.New("connection refused")
	rr = ts.do(http.MethodGet, "/api/v1/health/ready", nil, nil)
	assertError(t, rr, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgServiceNotReady)
	decodeData(t, rr, &ready)
	if ready.Database || ready.Checks["database"] != "unreachable" {
		t.Errorf("not ready body = %+v", ready)
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"duplicate key", &database.DuplicateKeyError{Key: "username", Value: "bob"},
			http.StatusBadRequest, ErrCodeBadRequest, "This username: bob is already exist!"},
		{"wrapped movie not found", fmt.Errorf("get: %w", catalog.ErrMovieNotFound),
			http.StatusBadRequest, ErrCodeBadRequest, "Movie Not Found"},
		{"user not found", accounts.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound, "User Not Found"},
		{"bad credentials", accounts.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid Email or password"},
		{"wrapped user not found", fmt.Errorf("update user: %w", accounts.ErrUserNotFound),
			http.StatusNotFound, ErrCodeNotFound, "User Not Found"},
		{"wrapped bad credentials", fmt.Errorf("login: %w", accounts.ErrInvalidCredentials),
			http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid Email or password"},
		{"wrapped invalid rating", fmt.Errorf("rate %s: %w", "abc", catalog.ErrInvalidRating),
			http.StatusBadRequest, ErrCodeBadRequest, "Rating must be between 0 and 10"},
		{"sync not started", syncpkg.ErrNotStarted, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgSyncUnavailable},
		{"body too large", &http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, msgBodyTooLarge},
		{"unknown", errors.New("mongo exploded"), http.StatusInternalServerError, ErrCodeInternal, msgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := newRecorder()
			writeServiceError(rr, newRequest(), tt.err)
			assertError(t, rr, tt.status, tt.code, tt.message)
		})
	}
}
