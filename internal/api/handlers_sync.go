// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// TriggerSync starts a catalog import in the background and answers 202.
// A run already in progress gives 409.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.sync == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgSyncUnavailable)
		return
	}

	if err := h.sync.Trigger(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Manual catalog sync triggered")
	h.recordAction(r, audit.EventTypeSyncTriggered, &audit.Target{ID: "tmdb", Type: "resource", Name: "tmdb"}, "Catalog sync triggered")
	respondSuccess(w, http.StatusAccepted, models.MessageResponse{Message: msgSyncTriggered}, start, false)
}

// SyncStatus reports the schedule, whether a run is active and the last result.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.sync == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgSyncUnavailable)
		return
	}
	respondSuccess(w, http.StatusOK, h.sync.Status(), start, false)
}

// SyncEvents upgrades to a websocket that receives sync_started,
// sync_progress, sync_completed and sync_failed messages.
func (h *Handler) SyncEvents(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgStreamUnavailable)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	var subject string
	if s := auth.GetAuthSubject(r.Context()); s != nil {
		subject = s.ID
	}
	client := ws.NewClient(h.hub, conn, subject)

	select {
	case h.hub.Register <- client:
	case <-h.hub.Done():
		_ = conn.Close()
		return
	}
	client.Start()
}

// getUpgrader returns the upgrader for SyncEvents.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts requests without an Origin header, since the
// stream already requires a bearer token, and otherwise requires the origin
// to be listed in CORS_ORIGINS. "*" allows any origin.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	logging.Ctx(r.Context()).Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}
