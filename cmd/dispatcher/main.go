package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/strollcast/strollcast/internal/adapters/nats"
	temporaladapter "github.com/strollcast/strollcast/internal/adapters/temporal"
	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/pkg/config"
	"github.com/strollcast/strollcast/internal/pkg/logging"
)

// The dispatcher drains domain events off JetStream: published tours are
// handed to the narration pipeline, new feedback is fanned out to the
// WebSocket broadcast feed. The pipeline's tour-derived workflow IDs make
// redelivered events harmless.
func main() {
	cfg, err := config.Load("strollcast-dispatcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("strollcast-dispatcher", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	pipeline, err := temporaladapter.New(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue, cfg.TTS.DefaultVoiceID)
	if err != nil {
		log.Fatalf("temporal: %v", err)
	}
	defer pipeline.Close()

	err = sub.SubscribeTourPublished(ctx, func(ctx context.Context, tour *domain.Tour) error {
		slog.Info("tour published, starting narration", "tour_id", tour.ID, "name", tour.Name)
		return pipeline.StartTourNarration(ctx, tour.ID)
	})
	if err != nil {
		log.Fatalf("subscribe tours.published: %v", err)
	}

	err = sub.SubscribeFeedbackCreated(ctx, func(ctx context.Context, fb *domain.Feedback) error {
		payload, err := json.Marshal(map[string]any{
			"event":   "feedback.created",
			"tour_id": fb.TourID,
			"site_id": fb.SiteID,
			"type":    fb.Type,
		})
		if err != nil {
			return err
		}
		return publisher.PublishBroadcast(ctx, payload)
	})
	if err != nil {
		log.Fatalf("subscribe feedback.created: %v", err)
	}

	slog.Info("dispatcher started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()
}
