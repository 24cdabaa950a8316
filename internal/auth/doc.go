// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package auth authenticates API callers.

Key Components:

  - JWTManager: HS256 session tokens carrying user id, username and role
  - PasswordHasher: bcrypt hashing for stored account passwords
  - Middleware: Bearer token authentication for chi routes
  - BasicAuthManager: HTTP Basic credentials guarding /metrics
  - AuthSubject: the authenticated caller stored in the request context

Authentication Flow:

 1. POST /api/v1/users/login verifies the bcrypt hash and returns a token
 2. Clients send "Authorization: Bearer <token>"
 3. Middleware.Authenticate validates signature, algorithm and expiry
 4. The user is re-read so removed accounts lose access immediately
 5. The AuthSubject is placed in the context for authz and handlers

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(jwtManager, accountsService, respondError)

	r.Group(func(r chi.Router) {
	    r.Use(mw.Authenticate)
	    r.Get("/api/v1/users/me", h.Me)
	})

	subject := auth.GetAuthSubject(r.Context())

Security Notes:

  - Tokens are only accepted when signed with HS256; "none" and RSA
    algorithms are rejected before the key is consulted
  - Passwords longer than 72 bytes are rejected by bcrypt and by request
    validation
  - Basic credentials are compared in constant time
*/
package auth
