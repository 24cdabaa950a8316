// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package authz gates API routes by role using Casbin RBAC.

The model (model.conf) and policy (policy.csv) are embedded. Requests are
(role, object, action) triples, for example (user, movies, read). The grouping
rule "g, admin, user" makes admin inherit every user permission, so policy
only lists what admin adds.

Objects and actions in use:

	movies     read, write, delete
	ratings    write
	favorites  write
	profile    read
	users      *  (admin only)
	sync       *  (admin only)
	audit      read  (admin only)

Middleware.Authorize runs after auth.Middleware.Authenticate:

	r.With(authzMW.Authorize(authz.ObjMovies, authz.ActWrite)).Post("/movies", h.CreateMovie)

Decisions are cached per (role, object, action) for CASBIN_CACHE_TTL since the
policy is static at runtime.
*/
package authz
