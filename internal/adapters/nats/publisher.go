package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/strollcast/strollcast/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the tour and feedback event
// streams exist.
func NewPublisher(url string) (*Publisher, error) {
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

	streams := []nats.StreamConfig{
		{
			Name:      "TOUR_EVENTS",
			Subjects:  []string{"tours.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "FEEDBACK_EVENTS",
			Subjects:  []string{"feedback.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishTourPublished announces a tour going live. The narration worker
// and cache invalidation both hang off this subject.
func (p *Publisher) PublishTourPublished(ctx context.Context, tour *domain.Tour) error {
	data, err := json.Marshal(tour)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("tours.published."+tour.ID, data)
	return err
}

// PublishMetricsRecalculated announces fresh distance/duration numbers.
func (p *Publisher) PublishMetricsRecalculated(ctx context.Context, tourID string, m domain.TourMetrics) error {
	data, err := json.Marshal(struct {
		TourID  string             `json:"tour_id"`
		Metrics domain.TourMetrics `json:"metrics"`
	}{TourID: tourID, Metrics: m})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("tours.metrics."+tourID, data)
	return err
}

// PublishFeedbackCreated announces new feedback for the moderation queue.
func (p *Publisher) PublishFeedbackCreated(ctx context.Context, fb *domain.Feedback) error {
	data, err := json.Marshal(fb)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("feedback.created", data)
	return err
}

// PublishBroadcast pushes a fire-and-forget message to connected clients
// via core NATS (no persistence).
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("tours.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
