// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// newBasicAuthManagerForTest uses bcrypt.MinCost so tests hash in ~2ms
// instead of ~250ms. Production code must use NewBasicAuthManager.
func newBasicAuthManagerForTest(username, password string) (*BasicAuthManager, error) {
	return newBasicAuthManager(username, password, bcrypt.MinCost)
}
