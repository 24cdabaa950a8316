// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package testinfra

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// MockTMDBKey is the api_key MockTMDBServer accepts.
const MockTMDBKey = "test-tmdb-key"

// TMDBMovie is a fixture row served by MockTMDBServer.
type TMDBMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Adult       bool    `json:"adult"`
	GenreIDs    []int64 `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
}

// TMDBGenre is a fixture genre.
type TMDBGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MockTMDBServer is an httptest server imitating the TMDB v3 endpoints used
// by the catalog import. Requests without MockTMDBKey get 401.
type MockTMDBServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	genres   []TMDBGenre
	pages    [][]TMDBMovie
	requests map[string]int

	// FailNext makes the next n requests return FailStatus.
	FailNext   int
	FailStatus int

	// RetryAfter is sent with 429 responses when set.
	RetryAfter string
}

// NewMockTMDBServer starts a server with the given genres and popular pages
// (pages[0] is page 1). The server is closed by t.Cleanup.
func NewMockTMDBServer(t *testing.T, genres []TMDBGenre, pages [][]TMDBMovie) *MockTMDBServer {
	t.Helper()

	m := &MockTMDBServer{
		genres:     genres,
		pages:      pages,
		requests:   make(map[string]int),
		FailStatus: http.StatusInternalServerError,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/genre/movie/list", m.handle(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"genres": m.genres})
	}))
	mux.HandleFunc("/movie/popular", m.handle(m.servePopular))

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the base URL to use as TMDB_BASE_URL.
func (m *MockTMDBServer) URL() string {
	return m.Server.URL
}

// Requests returns how many requests hit path.
func (m *MockTMDBServer) Requests(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[path]
}

// SetFailures makes the next n requests fail with status.
func (m *MockTMDBServer) SetFailures(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailNext = n
	m.FailStatus = status
}

func (m *MockTMDBServer) handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests[r.URL.Path]++
		fail := m.FailNext > 0
		status := m.FailStatus
		retryAfter := m.RetryAfter
		if fail {
			m.FailNext--
		}
		m.mu.Unlock()

		if r.URL.Query().Get("api_key") != MockTMDBKey {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"status_code":    7,
				"status_message": "Invalid API key: You must be granted a valid key.",
				"success":        false,
			})
			return
		}

		if fail {
			if status == http.StatusTooManyRequests && retryAfter != "" {
				w.Header().Set("Retry-After", retryAfter)
			}
			writeJSON(w, status, map[string]interface{}{
				"status_code":    25,
				"status_message": http.StatusText(status),
			})
			return
		}

		next(w, r)
	}
}

func (m *MockTMDBServer) servePopular(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = p
	}

	total := 0
	for _, p := range m.pages {
		total += len(p)
	}

	results := []TMDBMovie{}
	if page >= 1 && page <= len(m.pages) {
		results = m.pages[page-1]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":          page,
		"results":       results,
		"total_pages":   len(m.pages),
		"total_results": total,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
