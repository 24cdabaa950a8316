// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package models holds the documents persisted in MongoDB and the request and
// response shapes of the HTTP API.
package models

import (
	"time"
)

// APIResponse is the envelope used by every JSON endpoint.
//
//	{
//	  "status": "success",
//	  "data": {"data": [...], "total": 42},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 7}
//	}
//
// Errors set Status to "error" and populate Error:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"},
//	  "error": {"code": "BAD_REQUEST", "message": "Movie Not Found"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing and cache information.
// QueryTimeMS is omitted for cache hits, which set Cached instead.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the error member of the envelope.
//
// Codes in use:
//   - VALIDATION_ERROR: malformed body or query parameters
//   - BAD_REQUEST: domain rule violated (unknown movie, duplicate username, ...)
//   - UNAUTHORIZED: missing, invalid or expired credentials
//   - FORBIDDEN: role lacks permission
//   - NOT_FOUND: no such route or user
//   - CONFLICT: an operation is already in progress
//   - RATE_LIMIT_EXCEEDED: too many requests
//   - SERVICE_UNAVAILABLE: a dependency is down
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse is returned by mutations that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Uptime   float64           `json:"uptime_seconds"`
	Checks   map[string]string `json:"checks,omitempty"`
	Database bool              `json:"database_connected"`
}
