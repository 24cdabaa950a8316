// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package events is Marquee's in-process publish/subscribe bus.

Bus wraps Watermill's GoChannel pub/sub. Producers publish JSON payloads to a
topic with an event type in the message metadata; consumers subscribe with a
context and receive *message.Message values they must Ack.

	bus := events.NewBus()
	defer bus.Close()

	msgs, _ := bus.Subscribe(ctx, events.TopicSyncProgress)
	_ = bus.Publish(ctx, events.TopicSyncProgress, models.SyncEventStarted, progress)

Publish waits until every current subscriber has acknowledged the message, so
messages from one publisher are delivered in publish order. Messages published
while nobody is subscribed are dropped.

Topics:

	sync.progress   models.SyncProgress snapshots from the TMDB catalog sync
*/
package events
