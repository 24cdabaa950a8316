// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: X-Request-ID propagation plus request and correlation ids on the
    logging context
  - AccessLog: one structured log line per request
  - PrometheusMetrics: request counts, latencies and in-flight gauge, labelled
    by chi route pattern
  - SecurityHeaders: nosniff, frame denial, referrer policy, HSTS behind TLS
  - BodyLimit: caps request bodies (50MB by default)
  - Compression: gzip for clients that accept it

Handler-style middleware (func(http.HandlerFunc) http.HandlerFunc) is adapted
for chi with api.chiMiddleware; the rest already has chi's shape.

Middleware Stack:

	RequestID -> RealIP -> AccessLog -> Recoverer -> SecurityHeaders -> CORS
	    -> BodyLimit -> PrometheusMetrics -> rate limit -> auth -> handler

Thread Safety:

All middleware is stateless per request; metrics use Prometheus' atomic
collectors.
*/
package middleware
