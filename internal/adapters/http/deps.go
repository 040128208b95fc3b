package http

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/strollcast/strollcast/internal/adapters/postgres"
	"github.com/strollcast/strollcast/internal/adapters/valkey"
	"github.com/strollcast/strollcast/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Tours        *usecases.TourService
	Sites        *usecases.SiteService
	Discovery    *usecases.DiscoveryService
	Feedback     *usecases.FeedbackService
	Narration    *usecases.NarrationService
	Descriptions *usecases.DescriptionService
	Users        *usecases.UserService
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
	JWTSecret    string
	TokenTTL     time.Duration
}
