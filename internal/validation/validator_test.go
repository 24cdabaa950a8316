// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Fatal("GetValidator() should return one non-nil instance")
	}
}

type listQuery struct {
	Page        int    `query:"page" validate:"min=1"`
	Limit       int    `query:"limit" validate:"min=1,max=100"`
	Sort        string `query:"sort" validate:"omitempty,sortfield"`
	SearchField string `query:"searchField" validate:"omitempty,searchfield"`
	MovieID     string `json:"movieId" validate:"omitempty,objectid"`
}

func TestValidateStruct_CustomTags(t *testing.T) {
	tests := []struct {
		name      string
		input     listQuery
		wantField string
		wantTag   string
	}{
		{"valid", listQuery{Page: 1, Limit: 10, Sort: "-rating", SearchField: "title", MovieID: "65a1f0c2e4b0a1b2c3d4e5f6"}, "", ""},
		{"valid ascending sort", listQuery{Page: 2, Limit: 5, Sort: "createdAt"}, "", ""},
		{"unknown sort", listQuery{Page: 1, Limit: 10, Sort: "passwordHash"}, "sort", "sortfield"},
		{"double dash sort", listQuery{Page: 1, Limit: 10, Sort: "--rating"}, "sort", "sortfield"},
		{"unknown search field", listQuery{Page: 1, Limit: 10, SearchField: "role"}, "searchField", "searchfield"},
		{"bad object id", listQuery{Page: 1, Limit: 10, MovieID: "not-an-id"}, "movieId", "objectid"},
		{"limit too large", listQuery{Page: 1, Limit: 500}, "limit", "max"},
		{"page zero", listQuery{Page: 0, Limit: 10}, "page", "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("got %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

type registerBody struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

func TestToAPIError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		verr := ValidateStruct(&registerBody{Name: "Ann", Username: "ab", Password: "x"})
		if verr == nil {
			t.Fatal("expected error")
		}
		apiErr := verr.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Message != "username must be at least 3 characters" {
			t.Errorf("Message = %q", apiErr.Message)
		}
		if apiErr.Details["field"] != "username" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		verr := ValidateStruct(&registerBody{})
		if verr == nil {
			t.Fatal("expected error")
		}
		apiErr := verr.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 3 {
			t.Fatalf("Details = %v, want 3 fields", apiErr.Details)
		}
		for _, f := range []string{"name is required", "username is required", "password is required"} {
			if !strings.Contains(apiErr.Message, f) {
				t.Errorf("Message %q missing %q", apiErr.Message, f)
			}
		}
	})
}

func TestRateBounds(t *testing.T) {
	type rateBody struct {
		Rating *float64 `json:"rating" validate:"required,gte=0,lte=10"`
	}
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		rating  *float64
		wantTag string
	}{
		{f(0), ""},
		{f(10), ""},
		{f(7.5), ""},
		{f(-0.1), "gte"},
		{f(10.5), "lte"},
		{nil, "required"},
	}
	for _, tt := range tests {
		verr := ValidateStruct(&rateBody{Rating: tt.rating})
		if tt.wantTag == "" {
			if verr != nil {
				t.Errorf("rating %v: unexpected error %v", tt.rating, verr)
			}
			continue
		}
		if verr == nil || verr.Errors()[0].Tag() != tt.wantTag {
			t.Errorf("rating %v: got %v, want tag %s", tt.rating, verr, tt.wantTag)
		}
	}
}

func TestIsObjectID(t *testing.T) {
	if !IsObjectID("65a1f0c2e4b0a1b2c3d4e5f6") {
		t.Error("expected valid id")
	}
	for _, s := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if IsObjectID(s) {
			t.Errorf("IsObjectID(%q) = true", s)
		}
	}
}
