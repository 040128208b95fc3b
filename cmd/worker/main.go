package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/strollcast/strollcast/internal/adapters/elevenlabs"
	"github.com/strollcast/strollcast/internal/adapters/postgres"
	"github.com/strollcast/strollcast/internal/adapters/s3"
	"github.com/strollcast/strollcast/internal/core/usecases"
	"github.com/strollcast/strollcast/internal/pkg/config"
	"github.com/strollcast/strollcast/internal/pkg/logging"
	"github.com/strollcast/strollcast/internal/workflows"
)

func main() {
	cfg, err := config.Load("strollcast-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("strollcast-worker", logLevel, "json")

	ctx := context.Background()

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Media store for synthesised audio and playlist manifests
	media, err := s3.New(ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.PublicURL, cfg.S3.UseSSL)
	if err != nil {
		log.Fatalf("media store: %v", err)
	}

	tts := elevenlabs.New(cfg.TTS.APIKey, cfg.TTS.ModelID, "")
	tourRepo := postgres.NewTourRepo(db)
	audioCacheRepo := postgres.NewAudioCacheRepo(db)
	narrationSvc := usecases.NewNarrationService(audioCacheRepo, tts, media, cfg.TTS.DefaultVoiceID)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.TourNarrationWorkflow)
	w.RegisterActivity(&workflows.NarrationActivities{
		Tours:     tourRepo,
		Narration: narrationSvc,
		Media:     media,
	})

	slog.Info("narration worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
