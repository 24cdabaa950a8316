// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs Marquee's long-lived components under a suture v4
supervisor tree.

Tree layout:

	marquee (root)
	├── storage-layer   cache maintenance (Badger value-log GC)
	├── jobs-layer      catalog sync manager (cron)
	└── api-layer       HTTP server

A crashing child is restarted with backoff; after FailureThreshold failures
within the decay window the supervisor pauses for FailureBackoff. Layers are
isolated, so a failing sync job never takes the API down.

Supervisor events are logged through sutureslog, which requires *slog.Logger;
logging.NewSlogLogger bridges it to zerolog.

Service adapters live in supervisor/services.
*/
package supervisor
