package ports

import (
	"context"

	"github.com/strollcast/strollcast/internal/core/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// SiteRepository persists sites.
type SiteRepository interface {
	Create(ctx context.Context, site *domain.Site) error
	Update(ctx context.Context, site *domain.Site) error
	UpsertBatch(ctx context.Context, sites []domain.Site) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Site, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Site, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Site, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Site, error)
	// ToursContaining returns the IDs of every tour that includes the site.
	ToursContaining(ctx context.Context, siteID string) ([]string, error)
}

// TourRepository persists tours and their ordered stop lists.
type TourRepository interface {
	Create(ctx context.Context, tour *domain.Tour) error
	Update(ctx context.Context, tour *domain.Tour) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Tour, error)
	List(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error)
	// GetStops returns the tour's stops ordered by display order.
	GetStops(ctx context.Context, tourID string) ([]domain.TourStop, error)
	AddStop(ctx context.Context, tourID, siteID string, order int) error
	RemoveStop(ctx context.Context, tourID, siteID string) error
	ReorderStops(ctx context.Context, tourID string, siteIDsInOrder []string) error
	// SetMetrics persists recomputed distance/duration onto the tour.
	SetMetrics(ctx context.Context, tourID string, m domain.TourMetrics) error
	SetRating(ctx context.Context, tourID string, average float64, count int) error
	// SetAudioURL and SetStopAudio are written by the narration pipeline.
	SetAudioURL(ctx context.Context, tourID, audioURL string) error
	SetStopAudio(ctx context.Context, tourID, siteID, audioURL string) error
	// PublishedSummaries returns the slim projection used for proximity
	// search, optionally filtered by city or owner.
	PublishedSummaries(ctx context.Context, city, ownerID string) ([]domain.TourSummary, error)
}

// CityRepository persists supported cities.
type CityRepository interface {
	Create(ctx context.Context, city *domain.City) error
	Update(ctx context.Context, city *domain.City) error
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.City, error)
	ListActive(ctx context.Context) ([]domain.City, error)
	FindByName(ctx context.Context, name string) ([]domain.City, error)
}

// NeighborhoodRepository persists neighborhood descriptions.
type NeighborhoodRepository interface {
	Upsert(ctx context.Context, nd *domain.NeighborhoodDescription) error
	Get(ctx context.Context, city, neighborhood string) (*domain.NeighborhoodDescription, error)
	ListByCity(ctx context.Context, city string) ([]domain.NeighborhoodDescription, error)
}

// FeedbackRepository persists user feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) error
	GetByID(ctx context.Context, id string) (*domain.Feedback, error)
	ListByTour(ctx context.Context, tourID string) ([]domain.Feedback, error)
	ListBySite(ctx context.Context, siteID string) ([]domain.Feedback, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Feedback, error)
	SetStatus(ctx context.Context, id, status, adminNotes, reviewerID string) error
	// RatingForTour aggregates rating-type feedback for a tour.
	RatingForTour(ctx context.Context, tourID string) (average float64, count int, err error)
}

// AudioCacheRepository persists the text-hash to audio-URL mapping.
type AudioCacheRepository interface {
	FindByHash(ctx context.Context, textHash string) (*domain.AudioCacheEntry, error)
	Insert(ctx context.Context, entry *domain.AudioCacheEntry) error
	// TouchAccess bumps access stats on a cache hit.
	TouchAccess(ctx context.Context, id string) error
}
