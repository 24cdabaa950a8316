// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// EventSubscriber is the subscribing half of events.Bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// SyncForwarder bridges sync progress events from the bus to the hub.
type SyncForwarder struct {
	hub *Hub
	bus EventSubscriber

	ready     chan struct{}
	readyOnce sync.Once
}

// NewSyncForwarder creates a forwarder. Run it under the same supervisor as hub.
func NewSyncForwarder(hub *Hub, bus EventSubscriber) *SyncForwarder {
	return &SyncForwarder{
		hub:   hub,
		bus:   bus,
		ready: make(chan struct{}),
	}
}

// String implements fmt.Stringer for suture logs.
func (f *SyncForwarder) String() string {
	return "sync-event-forwarder"
}

// Ready is closed once the first subscription is active.
func (f *SyncForwarder) Ready() <-chan struct{} {
	return f.ready
}

// Serve implements suture.Service. It returns suture.ErrDoNotRestart when
// the bus closes underneath it.
func (f *SyncForwarder) Serve(ctx context.Context) error {
	messages, err := f.bus.Subscribe(ctx, events.TopicSyncProgress)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", events.TopicSyncProgress, err)
	}
	f.readyOnce.Do(func() { close(f.ready) })
	logging.Info().Str("topic", events.TopicSyncProgress).Msg("Sync event forwarder started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Sync event forwarder stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				logging.Info().Msg("Event bus closed, sync event forwarder exiting")
				return suture.ErrDoNotRestart
			}
			f.forward(msg)
		}
	}
}

func (f *SyncForwarder) forward(msg *message.Message) {
	defer msg.Ack()

	var progress models.SyncProgress
	if err := events.Decode(msg, &progress); err != nil {
		metrics.RecordEventForward(events.TopicSyncProgress, false)
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed sync event")
		return
	}
	metrics.RecordEventForward(events.TopicSyncProgress, true)
	f.hub.BroadcastJSON(events.EventType(msg), progress)
}
