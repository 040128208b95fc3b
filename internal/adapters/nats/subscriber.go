package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/strollcast/strollcast/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeTourPublished delivers published tours to the handler via a
// durable consumer, so the narration worker can restart without loss.
func (s *Subscriber) SubscribeTourPublished(ctx context.Context, handler func(ctx context.Context, tour *domain.Tour) error) error {
	sub, err := s.js.Subscribe("tours.published.>", func(msg *nats.Msg) {
		var tour domain.Tour
		if err := json.Unmarshal(msg.Data, &tour); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &tour); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("tour-publish-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeFeedbackCreated delivers new feedback entries to the handler.
func (s *Subscriber) SubscribeFeedbackCreated(ctx context.Context, handler func(ctx context.Context, fb *domain.Feedback) error) error {
	sub, err := s.js.Subscribe("feedback.created", func(msg *nats.Msg) {
		var fb domain.Feedback
		if err := json.Unmarshal(msg.Data, &fb); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &fb); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("feedback-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
