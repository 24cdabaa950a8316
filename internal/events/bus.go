// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// TopicSyncProgress carries models.SyncProgress snapshots.
const TopicSyncProgress = "sync.progress"

// Metadata keys set by Publish.
const (
	MetadataEventType     = "event_type"
	MetadataCorrelationID = "correlation_id"
)

// outputBuffer is the per-subscriber channel capacity.
const outputBuffer = 64

// ErrBusClosed is returned by Publish and Subscribe after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Bus is an in-process pub/sub backed by watermill's GoChannel.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus whose Publish blocks until subscribers ack.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            outputBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, newLoggerAdapter()),
	}
}

// Publish encodes payload as JSON and publishes it to topic. The correlation
// id from ctx, if any, travels in the message metadata.
func (b *Bus) Publish(ctx context.Context, topic, eventType string, payload interface{}) (err error) {
	defer func() { metrics.RecordEventPublish(topic, err) }()

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataEventType, eventType)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns the messages published to topic until ctx is done or the
// bus closes. Every message must be acked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.pubsub.Subscribe(ctx, topic)
}

// Close stops the bus and closes every subscription channel. It is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

// EventType returns the event type recorded by Publish.
func EventType(msg *message.Message) string {
	return msg.Metadata.Get(MetadataEventType)
}

// Decode unmarshals the message payload into v.
func Decode(msg *message.Message, v interface{}) error {
	return json.Unmarshal(msg.Payload, v)
}
