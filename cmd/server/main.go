// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/accounts"
	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/sync"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/websocket"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("sync_enabled", cfg.Sync.Enabled).
		Msg("Starting Marquee with supervisor tree")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().
			Strs("cors_origins", cfg.Security.CORSOrigins).
			Msg("SECURITY WARNING: CORS_ORIGINS contains '*'; any website can call the API with a user's bearer token. Set explicit origins in production.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === STORAGE ===
	db, err := database.New(ctx, &cfg.Mongo)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer closeCancel()
		if err := db.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	logging.Info().Str("database", cfg.Mongo.Database).Msg("Database initialized successfully")

	store, err := cache.New(ctx, &cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()
	logging.Info().Str("backend", store.Name()).Dur("ttl", cfg.Cache.TTL).Msg("Cache initialized")

	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		auditLogger = audit.NewLogger(db.Audit(), &audit.Config{
			Enabled:         true,
			LogLevel:        audit.SeverityInfo,
			RetentionDays:   cfg.Audit.RetentionDays,
			CleanupInterval: cfg.Audit.CleanupInterval,
			BufferSize:      cfg.Audit.BufferSize,
			LogToStdout:     cfg.Audit.LogToStdout,
		})
		defer func() {
			if err := auditLogger.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit logger")
			}
		}()
		logging.Info().Int("retention_days", cfg.Audit.RetentionDays).Msg("Audit logging enabled")
	}

	// === AUTHENTICATION ===
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	hasher := auth.NewPasswordHasher(auth.DefaultBcryptCost)

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
		CacheEnabled: cfg.Security.Casbin.CacheEnabled,
		CacheTTL:     cfg.Security.Casbin.CacheTTL,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	// === DOMAIN SERVICES ===
	movies := catalog.NewService(db.Movies(), store, cfg)
	users := accounts.NewService(db.Users(), hasher, jwtManager, movies)

	if cfg.HasBootstrapAdmin() {
		if err := users.EnsureAdmin(ctx, cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
			logging.Fatal().Err(err).Msg("Failed to provision administrator account")
		}
		auditLogger.Log(&audit.Event{
			Type:        audit.EventTypeAdminBootstrap,
			Outcome:     audit.OutcomeSuccess,
			Actor:       audit.SystemActor(),
			Target:      &audit.Target{ID: cfg.Security.AdminUsername, Type: "user", Name: cfg.Security.AdminUsername},
			Source:      audit.Source{IPAddress: "local"},
			Action:      "bootstrap",
			Description: "Administrator account provisioned from configuration",
		})
	}

	var syncManager *sync.Manager
	var wsHub *websocket.Hub
	var eventBus *events.Bus
	if cfg.TMDB.APIKey != "" {
		client := tmdb.NewCircuitBreakerClient(&cfg.TMDB)
		syncManager = sync.NewManager(db.Movies(), client, store, cfg)
		eventBus = events.NewBus()
		defer func() {
			if err := eventBus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		syncManager.SetEventPublisher(eventBus)
		wsHub = websocket.NewHub()
	} else {
		logging.Info().Msg("TMDB_API_KEY not set - catalog sync disabled")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	// === HTTP ===
	handlerDeps := api.HandlerDeps{
		Movies:   movies,
		Accounts: users,
		DB:       db,
		Version:  version,

		AllowedOrigins: cfg.Security.CORSOrigins,
	}
	if syncManager != nil {
		handlerDeps.Sync = syncManager
		handlerDeps.Hub = wsHub
	}
	authzMiddleware := authz.NewMiddleware(enforcer, api.ErrorResponder())
	if auditLogger != nil {
		handlerDeps.Audit = auditLogger
		authzMiddleware.OnDenied(api.AuditDenied(auditLogger))
	}

	var metricsAuth *auth.BasicAuthManager
	if cfg.MetricsEnabled() {
		metricsAuth, err = auth.NewBasicAuthManager(cfg.Security.MetricsUsername, cfg.Security.MetricsPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize metrics authentication")
		}
		logging.Info().Msg("Prometheus metrics exposed on /metrics")
	}

	router := api.NewRouter(api.RouterDeps{
		Handler:       api.NewHandler(handlerDeps),
		Authn:         auth.NewMiddleware(jwtManager, users, api.ErrorResponder()),
		Authz:         authzMiddleware,
		MetricsAuth:   metricsAuth,
		ChiMiddleware: api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if auditLogger != nil {
		tree.AddStorageService(auditLogger)
		logging.Info().Msg("Audit retention service added to supervisor tree")
	}
	if gc, ok := store.(*cache.BadgerStore); ok {
		tree.AddStorageService(services.NewCacheGCService(gc, 10*time.Minute))
		logging.Info().Msg("Cache GC service added to supervisor tree")
	}
	if syncManager != nil {
		tree.AddJobService(services.NewSyncService(syncManager))
		logging.Info().Msg("Sync manager added to supervisor tree")
	}
	if wsHub != nil {
		tree.AddAPIService(wsHub)
		tree.AddAPIService(websocket.NewSyncForwarder(wsHub, eventBus))
		logging.Info().Msg("WebSocket hub and sync event forwarder added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for the supervisor to finish, either from a signal or a fatal error
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
