// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package audit records security-relevant events: logins, authorization
// denials and administrative changes to the catalog and accounts.
//
// # Event Types
//
// Authentication:
//   - auth.success, auth.failure: login attempts
//
// Authorization:
//   - authz.denied: a role lacked permission for a route
//
// Administration:
//   - user.created, user.modified, user.deleted: account lifecycle
//   - movie.created, movie.modified, movie.deleted: catalog curation
//   - sync.triggered: manual TMDB import
//   - admin.bootstrap: administrator provisioned at startup
//
// # Architecture
//
//	Logger.Log() -> Event Buffer (chan) -> Async Writer -> Store
//	                     |                      |
//	                 Non-blocking           Background goroutine
//
// Log never blocks the request path; when the buffer is full the event is
// dropped and a warning is logged. Close drains the buffer.
//
// Logger also implements suture.Service: Serve runs the retention cleanup on
// CleanupInterval, deleting events older than RetentionDays.
//
// # Stores
//
//   - MemoryStore: bounded in-process slice, used in tests
//   - database.AuditStore: the MongoDB "audit_events" collection
package audit
