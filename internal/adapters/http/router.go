package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/strollcast/strollcast/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	auth := OptionalAuth(deps.JWTSecret)
	required := AuthRequired(deps.JWTSecret)

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")

	// Auth
	v1.Post("/auth/register", timeout.NewWithContext(RegisterHandler(deps), 15*time.Second))
	v1.Post("/auth/login", timeout.NewWithContext(LoginHandler(deps), 15*time.Second))
	v1.Get("/auth/me", required, timeout.NewWithContext(MeHandler(deps), 15*time.Second))

	// Discovery
	v1.Get("/tours/nearby", timeout.NewWithContext(NearbyToursHandler(deps), 15*time.Second))
	v1.Get("/cities", timeout.NewWithContext(ListCitiesHandler(deps), 15*time.Second))
	v1.Get("/cities/closest", timeout.NewWithContext(ClosestCityHandler(deps), 15*time.Second))

	// Tours
	v1.Get("/tours", auth, timeout.NewWithContext(ListToursHandler(deps), 15*time.Second))
	v1.Post("/tours", required, timeout.NewWithContext(CreateTourHandler(deps), 15*time.Second))
	v1.Get("/tours/:id", timeout.NewWithContext(GetTourHandler(deps), 15*time.Second))
	v1.Put("/tours/:id", required, timeout.NewWithContext(UpdateTourHandler(deps), 15*time.Second))
	v1.Delete("/tours/:id", required, timeout.NewWithContext(DeleteTourHandler(deps), 15*time.Second))
	v1.Post("/tours/:id/publish", required, timeout.NewWithContext(PublishTourHandler(deps), 15*time.Second))
	v1.Post("/tours/:id/sites", required, timeout.NewWithContext(AddTourSiteHandler(deps), 15*time.Second))
	v1.Delete("/tours/:id/sites/:siteID", required, timeout.NewWithContext(RemoveTourSiteHandler(deps), 15*time.Second))
	v1.Put("/tours/:id/sites/order", required, timeout.NewWithContext(ReorderTourSitesHandler(deps), 15*time.Second))
	v1.Post("/tours/:id/recalculate", required, timeout.NewWithContext(RecalculateTourHandler(deps), 15*time.Second))
	v1.Get("/tours/:id/feedback", timeout.NewWithContext(TourFeedbackHandler(deps), 15*time.Second))

	// Sites
	v1.Get("/sites/nearby", timeout.NewWithContext(NearbySitesHandler(deps), 15*time.Second))
	v1.Get("/sites/search", timeout.NewWithContext(SearchSitesHandler(deps), 15*time.Second))
	v1.Get("/sites/batch", timeout.NewWithContext(BatchSitesHandler(deps), 15*time.Second))
	v1.Get("/sites/:id", timeout.NewWithContext(GetSiteHandler(deps), 15*time.Second))
	v1.Post("/sites", required, timeout.NewWithContext(CreateSiteHandler(deps), 15*time.Second))
	v1.Put("/sites/:id", required, timeout.NewWithContext(UpdateSiteHandler(deps), 15*time.Second))
	v1.Delete("/sites/:id", required, AdminRequired(), timeout.NewWithContext(DeleteSiteHandler(deps), 15*time.Second))
	v1.Post("/sites/:id/enrich", required, timeout.NewWithContext(EnrichSiteHandler(deps), 15*time.Second))
	v1.Post("/sites/:id/describe", required, timeout.NewWithContext(DescribeSiteHandler(deps), 15*time.Second))
	v1.Get("/sites/:id/feedback", timeout.NewWithContext(SiteFeedbackHandler(deps), 15*time.Second))

	// Neighborhood descriptions
	v1.Post("/neighborhoods/describe", required, timeout.NewWithContext(DescribeNeighborhoodHandler(deps), 15*time.Second))

	// Feedback
	v1.Post("/feedback", auth, timeout.NewWithContext(CreateFeedbackHandler(deps), 15*time.Second))
	v1.Get("/feedback/pending", required, AdminRequired(), timeout.NewWithContext(PendingFeedbackHandler(deps), 15*time.Second))
	v1.Post("/feedback/:id/review", required, AdminRequired(), timeout.NewWithContext(ReviewFeedbackHandler(deps), 15*time.Second))

	// Narration
	v1.Post("/narration", required, timeout.NewWithContext(GenerateNarrationHandler(deps), 15*time.Second))

	// Content stats
	v1.Get("/stats", timeout.NewWithContext(ContentStatsHandler(deps), 15*time.Second))

	// Legacy nearby endpoint, kept for older mobile clients.
	app.Get("/nearby",
		DeprecationMiddleware("/nearby", "/v1/tours/nearby", "2026-12-31"),
		timeout.NewWithContext(NearbyToursHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay needs a live NATS connection; without one the
	// endpoint is not registered at all.
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
