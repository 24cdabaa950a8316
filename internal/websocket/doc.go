// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package websocket streams catalog sync progress to connected clients.

GET /api/v1/sync/events upgrades an authenticated request and registers a
Client with the Hub. The sync manager publishes progress on the event bus
(events.TopicSyncProgress) at the start of a run, after every imported TMDB
page and when the run finishes. SyncForwarder subscribes to that topic and
hands each message to Hub.BroadcastJSON:

	{"type":"sync_progress","data":{"correlationId":"3f2a9c1d","trigger":"manual","page":2,...}}

Hub and SyncForwarder run as suture services (Serve/String). Lifecycle events are handled
before broadcasts, and clients receive messages in connection order. A client
whose send buffer fills up is disconnected. On shutdown every client gets a
close frame with code 1001.

Clients may send {"type":"ping"} and receive {"type":"pong"}; all other
client frames are ignored.
*/
package websocket
