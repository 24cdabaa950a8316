// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/marquee/internal/audit"
)

func keys(d bson.D) []string {
	out := make([]string, len(d))
	for i, e := range d {
		out[i] = e.Key
	}
	return out
}

func TestAuditFilter(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   []string
	}{
		{"empty", audit.QueryFilter{Limit: 50}, []string{}},
		{"types", audit.QueryFilter{Types: []audit.EventType{audit.EventTypeAuthFailure}}, []string{"type"}},
		{"outcome and actor", audit.QueryFilter{Outcomes: []audit.Outcome{audit.OutcomeFailure}, ActorID: "u1"}, []string{"outcome", "actor.id"}},
		{"target", audit.QueryFilter{TargetID: "m1", TargetType: "movie"}, []string{"target.id", "target.type"}},
		{"time window", audit.QueryFilter{StartTime: &start, EndTime: &end}, []string{"timestamp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(auditFilter(tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("keys = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("keys[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAuditFilter_TimeWindow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	f := auditFilter(audit.QueryFilter{StartTime: &start})
	window, ok := f[0].Value.(bson.D)
	if !ok {
		t.Fatalf("timestamp value = %T, want bson.D", f[0].Value)
	}
	if len(window) != 1 || window[0].Key != "$gte" {
		t.Errorf("window = %v, want only $gte", window)
	}
}
