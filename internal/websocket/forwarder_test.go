// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/models"
)

// startForwarder runs f.Serve until the test ends and waits for its subscription.
func startForwarder(t *testing.T, f *SyncForwarder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(2 * time.Second):
			t.Error("forwarder did not stop")
		}
	})

	select {
	case <-f.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder never subscribed")
	}
}

func newForwarderFixture(t *testing.T) (*events.Bus, *Client) {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(func() { _ = bus.Close() })

	h := NewHub()
	startHub(t, h)
	c := bareClient(h, 8)
	h.Register <- c
	waitForClients(t, h, 1)

	startForwarder(t, NewSyncForwarder(h, bus))
	return bus, c
}

func TestSyncForwarder_RelaysProgress(t *testing.T) {
	bus, c := newForwarderFixture(t)
	ctx := context.Background()

	sent := []struct {
		eventType string
		page      int
	}{
		{models.SyncEventStarted, 0},
		{models.SyncEventProgress, 1},
		{models.SyncEventProgress, 2},
		{models.SyncEventCompleted, 2},
	}
	for _, s := range sent {
		progress := models.SyncProgress{CorrelationID: "3f2a9c1d", Trigger: "manual", Page: s.page, TotalPages: 2}
		if err := bus.Publish(ctx, events.TopicSyncProgress, s.eventType, progress); err != nil {
			t.Fatalf("Publish(%s) error = %v", s.eventType, err)
		}
	}

	for i, s := range sent {
		m := receive(t, c)
		if m.Type != s.eventType {
			t.Errorf("message %d type = %q, want %q", i, m.Type, s.eventType)
		}
		got, ok := m.Data.(models.SyncProgress)
		if !ok {
			t.Fatalf("message %d data = %T, want models.SyncProgress", i, m.Data)
		}
		if got.Page != s.page || got.CorrelationID != "3f2a9c1d" {
			t.Errorf("message %d payload = %+v", i, got)
		}
	}
}

func TestSyncForwarder_DropsMalformed(t *testing.T) {
	bus, c := newForwarderFixture(t)
	ctx := context.Background()

	if err := bus.Publish(ctx, events.TopicSyncProgress, models.SyncEventProgress, "not an object"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := bus.Publish(ctx, events.TopicSyncProgress, models.SyncEventCompleted, models.SyncProgress{Inserted: 3}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	m := receive(t, c)
	if m.Type != models.SyncEventCompleted {
		t.Errorf("first relayed type = %q, want %q", m.Type, models.SyncEventCompleted)
	}
}

func TestSyncForwarder_StopsWhenBusCloses(t *testing.T) {
	bus := events.NewBus()
	f := NewSyncForwarder(NewHub(), bus)
	if f.String() != "sync-event-forwarder" {
		t.Errorf("String() = %q", f.String())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- f.Serve(context.Background()) }()
	select {
	case <-f.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder never subscribed")
	}

	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() = %v, want suture.ErrDoNotRestart", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder kept running after the bus closed")
	}

	if err := f.Serve(context.Background()); !errors.Is(err, events.ErrBusClosed) {
		t.Errorf("Serve() on closed bus = %v, want ErrBusClosed", err)
	}
}
