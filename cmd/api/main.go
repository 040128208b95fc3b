package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/strollcast/strollcast/internal/adapters/elevenlabs"
	"github.com/strollcast/strollcast/internal/adapters/googleplaces"
	"github.com/strollcast/strollcast/internal/adapters/http"
	natsadapter "github.com/strollcast/strollcast/internal/adapters/nats"
	"github.com/strollcast/strollcast/internal/adapters/openai"
	"github.com/strollcast/strollcast/internal/adapters/postgres"
	"github.com/strollcast/strollcast/internal/adapters/s3"
	temporaladapter "github.com/strollcast/strollcast/internal/adapters/temporal"
	"github.com/strollcast/strollcast/internal/adapters/valkey"
	"github.com/strollcast/strollcast/internal/core/ports"
	"github.com/strollcast/strollcast/internal/core/usecases"
	"github.com/strollcast/strollcast/internal/pkg/config"
	"github.com/strollcast/strollcast/internal/pkg/logging"
	"github.com/strollcast/strollcast/internal/pkg/metrics"
	"github.com/strollcast/strollcast/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("strollcast-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("strollcast-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Expose pool stats to Prometheus
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}()

	// Optional infra is held in interface variables assigned only on
	// success, so a failed constructor leaves a true nil the services'
	// guards can see, not a typed-nil pointer boxed in an interface.

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(ctx, cfg.Valkey.Addr, cfg.Valkey.Password)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var eventPub ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
		eventPub = publisher
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Media store
	var mediaStore ports.MediaStore
	media, err := s3.New(ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.PublicURL, cfg.S3.UseSSL)
	if err != nil {
		slog.Warn("media store unavailable", "error", err)
	} else {
		mediaStore = media
	}

	// Narration pipeline (Temporal)
	var pipeline ports.NarrationPipeline
	tp, err := temporaladapter.New(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue, cfg.TTS.DefaultVoiceID)
	if err != nil {
		slog.Warn("temporal unavailable, narration runs are skipped", "error", err)
	} else {
		defer tp.Close()
		pipeline = tp
	}

	// External providers
	tts := elevenlabs.New(cfg.TTS.APIKey, cfg.TTS.ModelID, "")
	llm := openai.New(cfg.LLM.APIKey, cfg.LLM.Model, "")
	places := googleplaces.New(cfg.Places.APIKey, "")

	// Repos
	tourRepo := postgres.NewTourRepo(db)
	siteRepo := postgres.NewSiteRepo(db)
	cityRepo := postgres.NewCityRepo(db)
	neighborhoodRepo := postgres.NewNeighborhoodRepo(db)
	feedbackRepo := postgres.NewFeedbackRepo(db)
	audioCacheRepo := postgres.NewAudioCacheRepo(db)
	userRepo := postgres.NewUserRepo(db)

	// Use cases
	tourSvc := usecases.NewTourService(tourRepo, eventPub, pipeline)
	siteSvc := usecases.NewSiteService(siteRepo, places, cacheSvc, tourSvc)
	discoverySvc := usecases.NewDiscoveryService(tourRepo, cityRepo, cacheSvc)
	feedbackSvc := usecases.NewFeedbackService(feedbackRepo, tourRepo, eventPub)
	narrationSvc := usecases.NewNarrationService(audioCacheRepo, tts, mediaStore, cfg.TTS.DefaultVoiceID)
	descriptionSvc := usecases.NewDescriptionService(llm, siteRepo, neighborhoodRepo)
	userSvc := usecases.NewUserService(userRepo)

	deps := &http.Dependencies{
		Tours:        tourSvc,
		Sites:        siteSvc,
		Discovery:    discoverySvc,
		Feedback:     feedbackSvc,
		Narration:    narrationSvc,
		Descriptions: descriptionSvc,
		Users:        userSvc,
		NATS:         natsConn,
		DB:           db,
		Cache:        cache,
		JWTSecret:    cfg.Auth.JWTSecret,
		TokenTTL:     time.Duration(cfg.Auth.TokenTTLMin) * time.Minute,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Strollcast API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.strollcast.app",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
