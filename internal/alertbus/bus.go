// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package alertbus decouples alert emission from its two consumers —
// the Notification Manager and the Activity Recorder — using an
// in-process Watermill pub/sub (spec §2 data flow: "detectors ... call
// Notification Manager" and separately "append an Activity record").
// The teacher wires Watermill's CQRS event bus over NATS
// (internal/eventprocessor/cqrs.go, guarded by a `nats` build tag); this
// sidecar is a single process with no durable external broker, so it
// uses Watermill's in-memory gochannel Pub/Sub instead and drops the
// NATS transport (recorded in DESIGN.md).
package alertbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const alertsTopic = "alerts"

// Alert is the payload published for every emitted notification.
type Alert struct {
	Kind     string `json:"kind"`
	Subject  string `json:"subject"`
	Device   string `json:"device"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
	Icon     string `json:"icon"`
}

// Bus fans published Alerts out to any number of subscribed handlers.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// New builds a Bus backed by Watermill's in-memory gochannel transport.
func New(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            256,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		}, logger),
		logger: logger,
	}
}

// Publish emits alert to every subscriber (spec §2: alert fan-out).
func (b *Bus) Publish(alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("alertbus: marshal: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubsub.Publish(alertsTopic, msg)
}

// Handler processes one delivered Alert. An error causes the message to
// be nacked and redelivered per the underlying Pub/Sub's semantics.
type Handler func(ctx context.Context, alert Alert) error

// Subscribe registers fn against the alerts topic and runs it in a
// background goroutine until ctx is cancelled, returning once the
// subscription's channel is closed.
func (b *Bus) Subscribe(ctx context.Context, fn Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, alertsTopic)
	if err != nil {
		return fmt.Errorf("alertbus: subscribe: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.dispatch(ctx, msg, fn)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, msg *message.Message, fn Handler) {
	var alert Alert
	if err := json.Unmarshal(msg.Payload, &alert); err != nil {
		b.logger.Error("alertbus: malformed alert payload", err, nil)
		msg.Nack()
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := fn(handleCtx, alert); err != nil {
		b.logger.Error("alertbus: handler failed", err, nil)
		msg.Nack()
		return
	}
	msg.Ack()
}

// Close shuts the underlying Pub/Sub down.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
