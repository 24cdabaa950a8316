// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy describes password requirements for the bootstrap admin
// account. Self-registered users are not subject to it.
type PasswordPolicy struct {
	MinLength int

	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool

	// MaxConsecutiveRepeats is the longest allowed run of one character (0 disables).
	MaxConsecutiveRepeats int

	ForbidCommonPasswords    bool
	ForbidUsernameSimilarity bool
}

// DefaultPasswordPolicy is applied to ADMIN_PASSWORD.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                12,
		RequireUppercase:         true,
		RequireLowercase:         true,
		RequireDigit:             true,
		RequireSpecial:           true,
		MaxConsecutiveRepeats:    3,
		ForbidCommonPasswords:    true,
		ForbidUsernameSimilarity: true,
	}
}

// PasswordValidationResult lists every violated rule.
type PasswordValidationResult struct {
	Valid  bool
	Errors []string
}

type charClasses struct {
	hasUpper   bool
	hasLower   bool
	hasDigit   bool
	hasSpecial bool
}

func analyzeCharClasses(password string) charClasses {
	var cc charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.hasUpper = true
		case unicode.IsLower(r):
			cc.hasLower = true
		case unicode.IsDigit(r):
			cc.hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			cc.hasSpecial = true
		}
	}
	return cc
}

func longestRun(password string) int {
	longest, current := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		last = r
	}
	return longest
}

// Validate checks password against the policy.
func (p PasswordPolicy) Validate(password, username string) PasswordValidationResult {
	var errs []string
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if len(password) < p.MinLength {
		fail("password must be at least %d characters (got %d)", p.MinLength, len(password))
	}

	cc := analyzeCharClasses(password)
	if p.RequireUppercase && !cc.hasUpper {
		fail("password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !cc.hasLower {
		fail("password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !cc.hasDigit {
		fail("password must contain at least one digit")
	}
	if p.RequireSpecial && !cc.hasSpecial {
		fail("password must contain at least one special character (!@#$%%^&*...)")
	}

	if p.MaxConsecutiveRepeats > 0 && longestRun(password) > p.MaxConsecutiveRepeats {
		fail("password cannot have more than %d consecutive repeated characters", p.MaxConsecutiveRepeats)
	}
	if p.ForbidCommonPasswords && commonPasswords[strings.ToLower(password)] {
		fail("password is too common and easily guessable")
	}
	if p.ForbidUsernameSimilarity && username != "" && isSimilarToUsername(password, username) {
		fail("password is too similar to username")
	}

	return PasswordValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateWithError joins all violations into one error.
func (p PasswordPolicy) ValidateWithError(password, username string) error {
	result := p.Validate(password, username)
	if !result.Valid {
		return errors.New(strings.Join(result.Errors, "; "))
	}
	return nil
}

// commonPasswords holds breached passwords that pass the character-class
// rules and would otherwise slip through.
var commonPasswords = map[string]bool{
	"password123!":  true,
	"p@ssw0rd1234":  true,
	"p@ssword1234":  true,
	"welcome@1234":  true,
	"admin@123456":  true,
	"qwerty@12345":  true,
	"letmein@1234":  true,
	"changeme@123":  true,
	"password@123":  true,
	"administrator": true,
	"movies@12345":  true,
	"marquee@1234":  true,
}

func isSimilarToUsername(password, username string) bool {
	lowerPass := strings.ToLower(password)
	lowerUser := strings.ToLower(username)

	if strings.Contains(lowerPass, lowerUser) || strings.Contains(lowerUser, lowerPass) {
		return true
	}

	substituted := strings.Map(func(r rune) rune {
		switch r {
		case 'a':
			return '@'
		case 'e':
			return '3'
		case 'i':
			return '1'
		case 'o':
			return '0'
		case 's':
			return '$'
		}
		return r
	}, lowerUser)
	return strings.Contains(lowerPass, substituted)
}
