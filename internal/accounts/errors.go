// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package accounts

import (
	"errors"

	"github.com/tomtom215/marquee/internal/auth"
)

// Client-facing account errors.
//
//nolint:staticcheck // messages are returned verbatim to clients
var (
	ErrUsernameTaken      = errors.New("Username Already Exist")
	ErrPasswordMismatch   = errors.New("Password Not Match")
	ErrInvalidCredentials = errors.New("Invalid Email or password")
	ErrUserNotFound       = auth.ErrUserNotFound
	ErrInvalidRole        = errors.New("role must be one of: user, admin")
)
