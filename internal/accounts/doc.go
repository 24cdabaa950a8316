// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package accounts implements registration, login, profile and favorites for
// users, plus account administration and the bootstrap administrator.
//
// The Service also satisfies auth.UserLookup, so the authentication
// middleware sees removed accounts as invalid on the next request.
package accounts
