// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee server.

Marquee is a movie catalog REST API: users register, browse and search the
catalog, rate movies and keep a favorites list; administrators curate the
catalog and accounts. The catalog is seeded from TMDB's popular movies by a
scheduled import.

# Application Architecture

The server runs under Suture v4 process supervision:

	RootSupervisor ("marquee")
	├── StorageSupervisor ("storage-layer")
	│   ├── Audit Retention (when AUDIT_ENABLED)
	│   └── Cache GC (badger backend only)
	├── JobSupervisor ("jobs-layer")
	│   └── Sync Manager (TMDB import, when TMDB_API_KEY is set)
	└── APISupervisor ("api-layer")
	    ├── WebSocket Hub (sync progress stream, with the sync manager)
	    ├── Sync Event Forwarder (event bus to hub)
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Database: MongoDB connection and index creation
 4. Cache: memory, redis or badger backend
 5. Audit Logger: buffered writer to the audit_events collection
 6. Authentication: JWT issuing, bcrypt hashing, casbin RBAC
 7. Accounts: optional administrator bootstrap (ADMIN_USERNAME/ADMIN_PASSWORD)
 8. Sync Manager: TMDB client behind a circuit breaker and rate limiter,
    publishing progress on the in-process Watermill event bus, which the
    WebSocket hub streams to clients
 9. Supervisor Tree and HTTP Server

# Configuration

Core environment variables:

	HTTP_PORT=3000
	MONGO_URI=mongodb://localhost:27017
	MONGO_DATABASE=movieAPIs
	JWT_SECRET=<32+ chars>       # required
	CACHE_BACKEND=memory         # memory, redis or badger
	TMDB_API_KEY=<key>           # enables the sync endpoints
	SYNC_ENABLED=true            # run the import on SYNC_SCHEDULE (@daily)
	AUDIT_RETENTION_DAYS=90      # audit events older than this are purged
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests within HTTP_SHUTDOWN_TIMEOUT, the sync manager waits for a running
import to stop, the audit buffer is flushed, then the cache and database
connections are closed.
*/
package main
