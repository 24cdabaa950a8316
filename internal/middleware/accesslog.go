// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
)

// AccessLog writes one log line per request once the response is complete.
// 5xx responses log at error level, 4xx at warn, everything else at info.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newResponseRecorder(w)

		next.ServeHTTP(rec, r)

		logger := logging.Ctx(r.Context())
		var ev *zerolog.Event
		switch {
		case rec.statusCode >= 500:
			ev = logger.Error()
		case rec.statusCode >= 400:
			ev = logger.Warn()
		default:
			ev = logger.Info()
		}
		ev.Str("component", "http").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.statusCode).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Str("user_agent", r.UserAgent()).
			Str("remote_ip", r.RemoteAddr).
			Msg("Request completed")
	})
}
