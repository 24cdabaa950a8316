// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package metrics defines Marquee's Prometheus instrumentation.
//
// Collectors are registered on the default registry via promauto and served
// from /metrics. Callers use the Record* helpers rather than touching the
// vectors directly so label sets stay consistent.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_query_duration_seconds",
			Help:    "Duration of MongoDB operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_query_errors_total",
			Help: "Total number of failed MongoDB operations",
		},
		[]string{"operation", "collection", "error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "movies_list", "movies_item", "genres"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"backend", "operation"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_invalidated_keys_total",
			Help: "Total number of cache keys removed by invalidation",
		},
		[]string{"backend"},
	)

	// Sync Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of TMDB catalog sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	SyncMovies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_movies_total",
			Help: "Movies seen by the catalog sync, by outcome",
		},
		[]string{"outcome"}, // "inserted", "skipped"
	)

	SyncPagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_pages_fetched_total",
			Help: "Total number of TMDB result pages fetched",
		},
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_errors_total",
			Help: "Total number of failed sync runs",
		},
		[]string{"error_type"}, // "tmdb_api", "database", "circuit_open", "other"
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful sync",
		},
	)

	SyncRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_running",
			Help: "1 while a catalog sync is in progress",
		},
	)

	// TMDB client metrics
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Total number of TMDB API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "Duration of TMDB API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current consecutive failures seen by the circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event bus metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Messages published to the in-process event bus",
		},
		[]string{"topic", "result"}, // result: "success", "error"
	)

	EventsForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_forwarded_total",
			Help: "Bus messages relayed to websocket clients",
		},
		[]string{"topic", "result"}, // result: "success", "malformed"
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by method and result",
		},
		[]string{"method", "result"}, // method: "login", "register", "bearer", "basic"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a MongoDB operation.
func RecordDBQuery(operation, collection string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, collection, classifyDBError(err)).Inc()
	}
}

// classifyDBError keeps the error_type label bounded.
func classifyDBError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"):
		return "duplicate_key"
	case strings.Contains(msg, "no documents"), strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "deadline"), strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "context canceled"):
		return "canceled"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected with 429.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordCacheLookup records a hit or miss for a logical cache.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCacheError records a failed backend call.
func RecordCacheError(backend, operation string) {
	CacheErrors.WithLabelValues(backend, operation).Inc()
}

// RecordCacheInvalidation records keys dropped by an invalidation.
func RecordCacheInvalidation(backend string, keys int) {
	CacheInvalidations.WithLabelValues(backend).Add(float64(keys))
}

// RecordSyncRun records the outcome of one catalog sync run.
func RecordSyncRun(duration time.Duration, pages, inserted, skipped int, err error) {
	SyncDuration.Observe(duration.Seconds())
	SyncPagesFetched.Add(float64(pages))
	SyncMovies.WithLabelValues("inserted").Add(float64(inserted))
	SyncMovies.WithLabelValues("skipped").Add(float64(skipped))
	if err != nil {
		SyncErrors.WithLabelValues(classifySyncError(err)).Inc()
		return
	}
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

func classifySyncError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "circuit breaker"):
		return "circuit_open"
	case strings.Contains(msg, "tmdb"):
		return "tmdb_api"
	case strings.Contains(msg, "mongo"), strings.Contains(msg, "database"), strings.Contains(msg, "insert"):
		return "database"
	default:
		return "other"
	}
}

// SetSyncRunning flips the sync_running gauge.
func SetSyncRunning(running bool) {
	if running {
		SyncRunning.Set(1)
		return
	}
	SyncRunning.Set(0)
}

// RecordTMDBRequest records one outbound TMDB call.
func RecordTMDBRequest(endpoint, statusCode string, duration time.Duration) {
	TMDBRequests.WithLabelValues(endpoint, statusCode).Inc()
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordAuthAttempt records an authentication attempt.
func RecordAuthAttempt(method string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(method, result).Inc()
}

// RecordEventPublish records one publish to the event bus.
func RecordEventPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventForward records one bus message handed to the websocket hub.
func RecordEventForward(topic string, ok bool) {
	result := "success"
	if !ok {
		result = "malformed"
	}
	EventsForwarded.WithLabelValues(topic, result).Inc()
}
