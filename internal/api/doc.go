// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP REST API layer for Marquee.

Key Components:

  - Router: chi route table and middleware stack
  - Handler: request handlers for users, movies, sync, audit and health
  - Response formatting: the models.APIResponse envelope on every JSON route
  - Error mapping: domain errors to status codes in one place (writeServiceError)

Routes (all JSON, under /api/v1 unless noted):

	POST   /users/register             public, auth rate limit
	POST   /users/login                public, login rate limit
	GET    /users/me                   user
	POST   /users/favorites/{movieId}  user
	GET    /users                      admin
	GET    /users/{id}                 admin
	PATCH  /users/{id}                 admin
	DELETE /users/{id}                 admin
	GET    /movies                     user
	GET    /movies/{id}                user
	POST   /movies                     admin
	PATCH  /movies/{id}                admin
	DELETE /movies/{id}                admin
	POST   /movies/{id}/rate           user
	POST   /sync/tmdb                  admin
	GET    /sync/status                admin
	GET    /sync/events                admin (websocket)
	GET    /audit                      admin
	GET    /health/live                public
	GET    /health/ready               public
	GET    /metrics                    basic auth (outside /api/v1)

Authentication is a bearer JWT checked by auth.Middleware; authorization is
the casbin policy enforced by authz.Middleware per route.

Response format:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":3}}
	{"status":"error","data":null,"metadata":{...},"error":{"code":"BAD_REQUEST","message":"Movie Not Found"}}
*/
package api
