// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authzDecisions counts decisions by role, object, action and outcome.
	authzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "object", "action", "decision"},
	)

	authzDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "marquee_authz_decision_duration_seconds",
			Help: "Duration of authorization decisions in seconds",
			// Casbin checks run in microseconds.
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"cache_hit"},
	)

	authzErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_authz_errors_total",
			Help: "Total number of enforcer errors",
		},
	)
)

func recordDecision(role, object, action string, allowed bool, duration time.Duration, cacheHit bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	authzDecisions.WithLabelValues(role, object, action, decision).Inc()

	cacheHitLabel := "false"
	if cacheHit {
		cacheHitLabel = "true"
	}
	authzDecisionDuration.WithLabelValues(cacheHitLabel).Observe(duration.Seconds())
}
