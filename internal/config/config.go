// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee's runtime configuration.
//
// Sources are layered with Koanf v2 (later sources win):
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/marquee/config.yaml)
//  3. Environment variables (see envMappings in koanf.go)
//
// Load validates the result and fails fast with an error naming the offending
// environment variable.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Sync     SyncConfig     `koanf:"sync"`
	API      APIConfig      `koanf:"api"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// MaxBodyBytes caps request bodies. 50MB matches what clients of the
	// previous API were allowed to post.
	MaxBodyBytes int64  `koanf:"max_body_bytes"`
	Environment  string `koanf:"environment"`
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI              string        `koanf:"uri"`
	Database         string        `koanf:"database"`
	ConnectTimeout   time.Duration `koanf:"connect_timeout"`
	OperationTimeout time.Duration `koanf:"operation_timeout"`
}

// CacheConfig selects and tunes the response cache.
type CacheConfig struct {
	// Backend is one of memory, redis, badger.
	Backend    string        `koanf:"backend"`
	TTL        time.Duration `koanf:"ttl"`
	GenreTTL   time.Duration `koanf:"genre_ttl"`
	MaxEntries int           `koanf:"max_entries"`
	BadgerPath string        `koanf:"badger_path"`
	Redis      RedisConfig   `koanf:"redis"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SecurityConfig holds authentication, authorization and HTTP hardening settings.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername/AdminPassword seed an administrator account at startup
	// when both are set and the account does not exist yet.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// MetricsUsername/MetricsPassword guard /metrics with basic auth.
	// Leaving either empty disables the endpoint.
	MetricsUsername string `koanf:"metrics_username"`
	MetricsPassword string `koanf:"metrics_password"`

	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig tunes the RBAC enforcer.
type CasbinConfig struct {
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// TMDBConfig configures the outbound catalog client.
type TMDBConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// SyncConfig configures the scheduled catalog import.
type SyncConfig struct {
	Enabled bool `koanf:"enabled"`
	// Schedule is a standard five-field cron expression or descriptor (@daily).
	Schedule  string `koanf:"schedule"`
	OnStartup bool   `koanf:"on_startup"`
	// MaxPages bounds how many /movie/popular pages one run may walk.
	MaxPages int `koanf:"max_pages"`
}

// APIConfig holds list endpoint limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// AuditConfig controls the security audit trail.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`
	// RetentionDays is how long events are kept. Zero keeps them forever.
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	BufferSize      int           `koanf:"buffer_size"`
	LogToStdout     bool          `koanf:"log_to_stdout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// RedisAddr returns host:port for the redis backend.
func (c *CacheConfig) RedisAddr() string {
	return joinHostPort(c.Redis.Host, c.Redis.Port)
}

// Addr returns the HTTP listen address.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
