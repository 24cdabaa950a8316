// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package audit

import (
	"context"
	"time"
)

// EventType categorizes audit events.
type EventType string

const (
	// Authentication events
	EventTypeAuthSuccess EventType = "auth.success"
	EventTypeAuthFailure EventType = "auth.failure"

	// Authorization events
	EventTypeAuthzDenied EventType = "authz.denied"

	// User management events
	EventTypeUserCreated  EventType = "user.created"
	EventTypeUserModified EventType = "user.modified"
	EventTypeUserDeleted  EventType = "user.deleted"

	// Catalog events
	EventTypeMovieCreated  EventType = "movie.created"
	EventTypeMovieModified EventType = "movie.modified"
	EventTypeMovieDeleted  EventType = "movie.deleted"
	EventTypeSyncTriggered EventType = "sync.triggered"

	// Administrative events
	EventTypeAdminBootstrap EventType = "admin.bootstrap"
)

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

var severityOrder = map[Severity]int{
	SeverityDebug:    0,
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityError:    3,
	SeverityCritical: 4,
}

// DefaultSeverity is applied by Logger.Log to events without a severity.
func DefaultSeverity(t EventType) Severity {
	switch t {
	case EventTypeAuthFailure, EventTypeAuthzDenied,
		EventTypeUserDeleted, EventTypeMovieDeleted, EventTypeAdminBootstrap:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event represents a security audit event.
type Event struct {
	ID          string            `bson:"_id" json:"id"`
	Timestamp   time.Time         `bson:"timestamp" json:"timestamp"`
	Type        EventType         `bson:"type" json:"type"`
	Severity    Severity          `bson:"severity" json:"severity"`
	Outcome     Outcome           `bson:"outcome" json:"outcome"`
	Actor       Actor             `bson:"actor" json:"actor"`
	Target      *Target           `bson:"target,omitempty" json:"target,omitempty"`
	Source      Source            `bson:"source" json:"source"`
	Action      string            `bson:"action" json:"action"`
	Description string            `bson:"description" json:"description"`
	Metadata    map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`

	// RequestID links the event to the access log line of the originating request.
	RequestID string `bson:"requestId,omitempty" json:"requestId,omitempty"`
}

// Actor represents who performed an action.
type Actor struct {
	ID   string `bson:"id" json:"id"`
	Type string `bson:"type" json:"type"` // user, anonymous, system
	Name string `bson:"name,omitempty" json:"name,omitempty"`
	Role string `bson:"role,omitempty" json:"role,omitempty"`
}

// Target represents the object of an action.
type Target struct {
	ID   string `bson:"id" json:"id"`
	Type string `bson:"type" json:"type"` // movie, user, resource
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// Source represents where a request originated.
type Source struct {
	IPAddress string `bson:"ipAddress" json:"ipAddress"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
}

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	Save(ctx context.Context, event *Event) error

	// Query retrieves events matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	// Count returns the number of events matching the filter.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes events older than the retention cutoff.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter defines filtering options for audit queries. Zero values match everything.
type QueryFilter struct {
	Types      []EventType `query:"type" validate:"omitempty,max=20"`
	Outcomes   []Outcome   `query:"outcome" validate:"omitempty,dive,oneof=success failure"`
	ActorID    string      `query:"actorId" validate:"omitempty,max=64"`
	TargetID   string      `query:"targetId" validate:"omitempty,max=64"`
	TargetType string      `query:"targetType" validate:"omitempty,max=32"`
	StartTime  *time.Time  `query:"start"`
	EndTime    *time.Time  `query:"end"`
	Limit      int         `query:"limit" validate:"min=1,max=500"`
	Offset     int         `query:"offset" validate:"min=0"`
}

// DefaultQueryFilter returns the filter used by the audit listing when no
// parameters are given.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{Limit: 50}
}

// Page is one page of audit events.
type Page struct {
	Events []Event `json:"events"`
	Total  int64   `json:"total"`
}
