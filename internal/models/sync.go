// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	Trigger    string        `json:"trigger"` // "schedule", "startup", "manual"
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Duration   time.Duration `json:"duration_ns"`
	Pages      int           `json:"pages"`
	TotalPages int           `json:"totalPages"`
	Inserted   int           `json:"inserted"`
	Skipped    int           `json:"skipped"`
	Error      string        `json:"error,omitempty"`
}

// SyncStatus is reported by GET /api/v1/sync/status.
type SyncStatus struct {
	Enabled  bool        `json:"enabled"`
	Running  bool        `json:"running"`
	Schedule string      `json:"schedule,omitempty"`
	NextRun  *time.Time  `json:"nextRun,omitempty"`
	LastRun  *SyncResult `json:"lastRun,omitempty"`
}

// Sync progress message types streamed on GET /api/v1/sync/events.
const (
	SyncEventStarted   = "sync_started"
	SyncEventProgress  = "sync_progress"
	SyncEventCompleted = "sync_completed"
	SyncEventFailed    = "sync_failed"
)

// SyncProgress is the payload of every sync event. Counters are cumulative
// for the run.
type SyncProgress struct {
	CorrelationID string    `json:"correlationId"`
	Trigger       string    `json:"trigger"`
	Page          int       `json:"page"`
	TotalPages    int       `json:"totalPages"`
	Inserted      int       `json:"inserted"`
	Skipped       int       `json:"skipped"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
