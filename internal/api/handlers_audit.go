// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
)

// Auditor records and lists security events. *audit.Logger implements it.
type Auditor interface {
	LogAuthSuccess(ctx context.Context, actor audit.Actor, source audit.Source)
	LogAuthFailure(ctx context.Context, username, reason string, source audit.Source)
	LogAuthzDenied(ctx context.Context, actor audit.Actor, object, action string, source audit.Source)
	LogAction(ctx context.Context, eventType audit.EventType, actor audit.Actor, target *audit.Target, source audit.Source, description string)
	Query(ctx context.Context, filter audit.QueryFilter) (*audit.Page, error)
}

const (
	msgAuditUnavailable = "Audit log is disabled"
	msgInvalidTimeRange = "start and end must be RFC3339 timestamps"
)

// ListAuditEvents pages the audit trail, newest first.
//
// Query parameters: type, outcome (repeatable or comma separated), actorId,
// targetId, targetType, start, end (RFC3339), limit (default 50, max 500),
// offset.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.audit == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgAuditUnavailable)
		return
	}

	filter, ok := parseAuditQuery(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidTimeRange)
		return
	}
	if !validateRequest(w, &filter) {
		return
	}

	page, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, page, start, false)
}

func parseAuditQuery(r *http.Request) (audit.QueryFilter, bool) {
	q := r.URL.Query()
	f := audit.DefaultQueryFilter()

	for _, v := range q["type"] {
		for _, t := range parseCommaSeparated(v) {
			f.Types = append(f.Types, audit.EventType(t))
		}
	}
	for _, v := range q["outcome"] {
		for _, o := range parseCommaSeparated(v) {
			f.Outcomes = append(f.Outcomes, audit.Outcome(o))
		}
	}
	f.ActorID = q.Get("actorId")
	f.TargetID = q.Get("targetId")
	f.TargetType = q.Get("targetType")
	f.Limit = getIntParam(r, "limit", f.Limit)
	f.Offset = getIntParam(r, "offset", 0)

	for key, dst := range map[string]**time.Time{"start": &f.StartTime, "end": &f.EndTime} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, false
		}
		*dst = &ts
	}
	return f, true
}

// recordAction logs a successful change made by the caller.
func (h *Handler) recordAction(r *http.Request, eventType audit.EventType, target *audit.Target, description string) {
	if h.audit == nil {
		return
	}
	h.audit.LogAction(r.Context(), eventType, actorOf(r), target, audit.SourceFromRequest(r), description)
}

func actorOf(r *http.Request) audit.Actor {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		return audit.Actor{ID: "anonymous", Type: "anonymous"}
	}
	return audit.ActorFromUser(subject.ID, subject.Username, string(subject.Role))
}

// AuditDenied adapts an Auditor to authz.Middleware.OnDenied.
func AuditDenied(a Auditor) authz.DeniedFunc {
	return func(r *http.Request, subject *auth.AuthSubject, object, action string) {
		actor := audit.ActorFromUser(subject.ID, subject.Username, string(subject.Role))
		a.LogAuthzDenied(r.Context(), actor, object, action, audit.SourceFromRequest(r))
	}
}
