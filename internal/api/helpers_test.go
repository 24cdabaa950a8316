// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/marquee/internal/accounts"
	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/models"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

const testJWTSecret = "test-secret-key-with-at-least-32-characters"

// fakeMovies is an in-memory MovieService.
type fakeMovies struct {
	mu       sync.Mutex
	movies   map[string]*models.Movie
	lastList models.ListQuery
	cached   bool
	listErr  error
	rated    []float64
}

func newFakeMovies(movies ...*models.Movie) *fakeMovies {
	f := &fakeMovies{movies: make(map[string]*models.Movie)}
	for _, m := range movies {
		f.movies[m.ID.Hex()] = m
	}
	return f
}

func (f *fakeMovies) NormalizeQuery(q models.ListQuery) models.ListQuery {
	return q.Normalize(10, 100)
}

func (f *fakeMovies) List(_ context.Context, q models.ListQuery, favorites map[string]struct{}) (*models.MoviePage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = q
	if f.listErr != nil {
		return nil, false, f.listErr
	}
	page := &models.MoviePage{Data: []models.Movie{}}
	for _, m := range f.movies {
		if m.Removed {
			continue
		}
		cp := *m
		_, cp.IsFavorite = favorites[cp.ID.Hex()]
		page.Data = append(page.Data, cp)
	}
	page.Total = int64(len(page.Data))
	return page, f.cached, nil
}

func (f *fakeMovies) lookup(id string) (*models.Movie, error) {
	m, ok := f.movies[id]
	if !ok || m.Removed {
		return nil, catalog.ErrMovieNotFound
	}
	return m, nil
}

func (f *fakeMovies) Get(_ context.Context, id string, favorites map[string]struct{}) (*models.Movie, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.lookup(id)
	if err != nil {
		return nil, false, err
	}
	cp := *m
	_, cp.IsFavorite = favorites[id]
	return &cp, f.cached, nil
}

func (f *fakeMovies) Create(_ context.Context, in *models.CreateMovieInput) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &models.Movie{ID: bson.NewObjectID(), Title: in.Title, Genres: in.Genres, CreatedAt: time.Now()}
	f.movies[m.ID.Hex()] = m
	return m, nil
}

func (f *fakeMovies) Update(_ context.Context, id string, in *models.UpdateMovieInput) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.lookup(id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		m.Title = *in.Title
	}
	return m, nil
}

func (f *fakeMovies) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.lookup(id)
	if err != nil {
		return err
	}
	m.Removed = true
	return nil
}

func (f *fakeMovies) Rate(_ context.Context, id string, rating float64) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rating < 0 || rating > 10 {
		return nil, catalog.ErrInvalidRating
	}
	m, err := f.lookup(id)
	if err != nil {
		return nil, err
	}
	f.rated = append(f.rated, rating)
	m.UserRatings = append(m.UserRatings, rating)
	return m, nil
}

// fakeAccounts is an in-memory AccountService and auth.UserLookup.
type fakeAccounts struct {
	mu     sync.Mutex
	users  map[string]*models.User
	tokens *auth.JWTManager
}

func newFakeAccounts(tokens *auth.JWTManager, users ...*models.User) *fakeAccounts {
	f := &fakeAccounts{users: make(map[string]*models.User), tokens: tokens}
	for _, u := range users {
		f.users[u.ID.Hex()] = u
	}
	return f
}

func (f *fakeAccounts) FindActiveUser(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Removed {
		return nil, accounts.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAccounts) byUsername(username string) *models.User {
	for _, u := range f.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (f *fakeAccounts) Register(_ context.Context, in *models.RegisterInput) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Password != in.ConfirmPassword {
		return nil, accounts.ErrPasswordMismatch
	}
	if f.byUsername(in.Username) != nil {
		return nil, accounts.ErrUsernameTaken
	}
	u := &models.User{ID: bson.NewObjectID(), Username: in.Username, Name: in.Name, Role: models.RoleUser}
	f.users[u.ID.Hex()] = u
	token, err := f.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Message: accounts.MsgUserCreated, User: u.ToResponse(), Token: token}, nil
}

func (f *fakeAccounts) Login(_ context.Context, in *models.LoginInput) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byUsername(in.Username)
	if u == nil || in.Password != "correct-password" {
		return nil, accounts.ErrInvalidCredentials
	}
	token, err := f.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Message: accounts.MsgUserLoggedIn, User: u.ToResponse(), Token: token}, nil
}

func (f *fakeAccounts) ToggleFavorite(_ context.Context, userID, movieID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := bson.ObjectIDFromHex(movieID); err != nil {
		return nil, catalog.ErrMovieNotFound
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, accounts.ErrUserNotFound
	}
	if u.HasFavorite(movieID) {
		kept := u.FavoriteMovies[:0]
		for _, id := range u.FavoriteMovies {
			if id != movieID {
				kept = append(kept, id)
			}
		}
		u.FavoriteMovies = kept
	} else {
		u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAccounts) List(_ context.Context, q models.UserListQuery) (*models.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := &models.UserPage{Data: []models.AdminUserView{}}
	for _, u := range f.users {
		if u.Removed && !q.IncludeRemoved {
			continue
		}
		page.Data = append(page.Data, u.ToAdminView())
	}
	page.Total = int64(len(page.Data))
	return page, nil
}

func (f *fakeAccounts) Get(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, accounts.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeAccounts) Update(_ context.Context, id string, in *models.UpdateUserInput) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, accounts.ErrUserNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	return u, nil
}

func (f *fakeAccounts) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Removed {
		return accounts.ErrUserNotFound
	}
	u.Removed = true
	return nil
}

type fakeSync struct {
	triggerErr error
	triggered  int
	status     models.SyncStatus
}

func (f *fakeSync) Trigger() error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.triggered++
	return nil
}

func (f *fakeSync) Status() models.SyncStatus {
	return f.status
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error {
	return f.err
}

// fakeAuditor writes events synchronously so tests can assert on them
// without waiting for the async writer.
type fakeAuditor struct {
	store    *audit.MemoryStore
	queryErr error
}

func newFakeAuditor() *fakeAuditor {
	return &fakeAuditor{store: audit.NewMemoryStore(100)}
}

func (f *fakeAuditor) save(e audit.Event) {
	e.ID = bson.NewObjectID().Hex()
	e.Timestamp = time.Now().UTC()
	_ = f.store.Save(context.Background(), &e)
}

func (f *fakeAuditor) LogAuthSuccess(_ context.Context, actor audit.Actor, source audit.Source) {
	f.save(audit.Event{Type: audit.EventTypeAuthSuccess, Outcome: audit.OutcomeSuccess, Actor: actor, Source: source})
}

func (f *fakeAuditor) LogAuthFailure(_ context.Context, username, reason string, source audit.Source) {
	f.save(audit.Event{
		Type:     audit.EventTypeAuthFailure,
		Outcome:  audit.OutcomeFailure,
		Actor:    audit.Actor{ID: username, Type: "anonymous"},
		Source:   source,
		Metadata: map[string]string{"reason": reason},
	})
}

func (f *fakeAuditor) LogAuthzDenied(_ context.Context, actor audit.Actor, object, action string, source audit.Source) {
	f.save(audit.Event{
		Type:    audit.EventTypeAuthzDenied,
		Outcome: audit.OutcomeFailure,
		Actor:   actor,
		Target:  &audit.Target{ID: object, Type: "resource"},
		Action:  action,
		Source:  source,
	})
}

func (f *fakeAuditor) LogAction(_ context.Context, eventType audit.EventType, actor audit.Actor, target *audit.Target, source audit.Source, description string) {
	f.save(audit.Event{
		Type:        eventType,
		Outcome:     audit.OutcomeSuccess,
		Actor:       actor,
		Target:      target,
		Source:      source,
		Description: description,
	})
}

func (f *fakeAuditor) Query(ctx context.Context, filter audit.QueryFilter) (*audit.Page, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	events, _ := f.store.Query(ctx, filter)
	total, _ := f.store.Count(ctx, filter)
	return &audit.Page{Events: events, Total: total}, nil
}

// ofType returns the recorded events of type t, newest first.
func (f *fakeAuditor) ofType(t audit.EventType) []audit.Event {
	events, _ := f.store.Query(context.Background(), audit.QueryFilter{Types: []audit.EventType{t}})
	return events
}

// testServer bundles a fully wired router with its fakes.
type testServer struct {
	t        *testing.T
	handler  http.Handler
	movies   *fakeMovies
	accounts *fakeAccounts
	sync     *fakeSync
	audit    *fakeAuditor
	db       *fakePinger
	tokens   *auth.JWTManager
	user     *models.User
	admin    *models.User
}

type serverOption func(*RouterDeps, *HandlerDeps)

func withRateLimits() serverOption {
	return func(rd *RouterDeps, _ *HandlerDeps) {
		rd.ChiMiddleware = NewChiMiddleware(DefaultChiMiddlewareConfig())
	}
}

func withoutSync() serverOption {
	return func(_ *RouterDeps, hd *HandlerDeps) {
		hd.Sync = nil
	}
}

func withoutAudit() serverOption {
	return func(_ *RouterDeps, hd *HandlerDeps) {
		hd.Audit = nil
	}
}

func withHub(hub *ws.Hub, origins ...string) serverOption {
	return func(_ *RouterDeps, hd *HandlerDeps) {
		hd.Hub = hub
		hd.AllowedOrigins = origins
	}
}

func withMaxBody(n int64) serverOption {
	return func(rd *RouterDeps, _ *HandlerDeps) {
		rd.MaxBodyBytes = n
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	tokens, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: testJWTSecret, SessionTimeout: time.Hour})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	user := &models.User{ID: bson.NewObjectID(), Username: "viewer", Name: "Viewer", Role: models.RoleUser}
	admin := &models.User{ID: bson.NewObjectID(), Username: "root", Name: "Root", Role: models.RoleAdmin}

	ts := &testServer{
		t:        t,
		movies:   newFakeMovies(),
		accounts: newFakeAccounts(tokens, user, admin),
		sync:     &fakeSync{status: models.SyncStatus{Enabled: true, Schedule: "@daily"}},
		audit:    newFakeAuditor(),
		db:       &fakePinger{},
		tokens:   tokens,
		user:     user,
		admin:    admin,
	}

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{CacheEnabled: false})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	noLimits := DefaultChiMiddlewareConfig()
	noLimits.RateLimitDisabled = true

	hd := HandlerDeps{
		Movies:   ts.movies,
		Accounts: ts.accounts,
		Sync:     ts.sync,
		Audit:    ts.audit,
		DB:       ts.db,
		Version:  "test",
	}
	authzMW := authz.NewMiddleware(enforcer, ErrorResponder())
	authzMW.OnDenied(AuditDenied(ts.audit))
	rd := RouterDeps{
		Authn:         auth.NewMiddleware(tokens, ts.accounts, ErrorResponder()),
		Authz:         authzMW,
		ChiMiddleware: NewChiMiddleware(noLimits),
	}
	for _, opt := range opts {
		opt(&rd, &hd)
	}
	rd.Handler = NewHandler(hd)

	ts.handler = NewRouter(rd).SetupChi()
	return ts
}

func (ts *testServer) tokenFor(u *models.User) string {
	ts.t.Helper()
	token, err := ts.tokens.GenerateToken(u)
	if err != nil {
		ts.t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

// do sends a request. A non-nil user is authenticated with a fresh token; a
// non-string body is JSON encoded.
func (ts *testServer) do(method, target string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+ts.tokenFor(user))
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors models.APIResponse with a raw data member.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rr)
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (body %q)", err, rr.Body.String())
	}
	return env
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rr.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	if message != "" && env.Error.Message != message {
		t.Errorf("error message = %q, want %q", env.Error.Message, message)
	}
}

func seedMovie(title string, genres ...string) *models.Movie {
	return &models.Movie{ID: bson.NewObjectID(), Title: title, Genres: genres, CreatedAt: time.Now()}
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
}
