// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// readinessTimeout bounds the database ping of a readiness check.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness check requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, models.HealthResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}, time.Time{}, false)
}

// HealthReady handles readiness check requests (Kubernetes-style)
// Returns 200 OK only when MongoDB answers a ping, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	dbOK := h.db != nil && h.db.Ping(ctx) == nil
	checks := map[string]string{"database": "ok"}
	if !dbOK {
		checks["database"] = "unreachable"
	}

	health := models.HealthResponse{
		Status:   "ready",
		Version:  h.version,
		Uptime:   time.Since(h.startTime).Seconds(),
		Checks:   checks,
		Database: dbOK,
	}

	if !dbOK {
		logging.Ctx(r.Context()).Warn().Msg("Readiness check failed: database unreachable")
		health.Status = "not_ready"
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     health,
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
			Error:    &models.APIError{Code: ErrCodeServiceUnavailable, Message: msgServiceNotReady},
		})
		return
	}
	respondSuccess(w, http.StatusOK, health, start, false)
}
