package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/ports"
	"github.com/strollcast/strollcast/internal/core/touring"
)

// TourService handles tour-related business logic, including the
// distance/duration recalculation policy: metrics are recomputed from the
// full current stop list every time the list's membership or order
// changes, never incrementally.
type TourService struct {
	tours     ports.TourRepository
	publisher ports.EventPublisher
	narration ports.NarrationPipeline
}

// NewTourService creates a new TourService. publisher and narration may be
// nil; events and narration generation are then skipped.
func NewTourService(tours ports.TourRepository, publisher ports.EventPublisher, narration ports.NarrationPipeline) *TourService {
	return &TourService{tours: tours, publisher: publisher, narration: narration}
}

// Create stores a new draft tour owned by ownerID.
func (s *TourService) Create(ctx context.Context, ownerID string, tour *domain.Tour) (*domain.Tour, error) {
	if tour.Name == "" {
		return nil, fmt.Errorf("tour name is required")
	}
	tour.OwnerID = ownerID
	tour.Status = domain.TourStatusDraft
	if err := s.tours.Create(ctx, tour); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}
	return tour, nil
}

// GetByID returns a tour with its ordered stops.
func (s *TourService) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stops, err := s.tours.GetStops(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load stops: %w", err)
	}
	tour.Stops = stops
	return tour, nil
}

// List returns tours matching the given filters. Empty filters are ignored.
func (s *TourService) List(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error) {
	return s.tours.List(ctx, status, city, neighborhood, ownerID)
}

// Update applies changes to a tour after verifying ownership.
func (s *TourService) Update(ctx context.Context, userID string, tour *domain.Tour) error {
	existing, err := s.tours.GetByID(ctx, tour.ID)
	if err != nil {
		return err
	}
	if existing.OwnerID != userID {
		return ErrNotOwner
	}
	return s.tours.Update(ctx, tour)
}

// Delete removes a tour after verifying ownership.
func (s *TourService) Delete(ctx context.Context, userID, tourID string) error {
	existing, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return err
	}
	if existing.OwnerID != userID {
		return ErrNotOwner
	}
	return s.tours.Delete(ctx, tourID)
}

// Publish transitions a tour to published, stamps publishedAt, emits the
// tour.published event, and kicks off narration generation.
func (s *TourService) Publish(ctx context.Context, userID, tourID string) (*domain.Tour, error) {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.OwnerID != userID {
		return nil, ErrNotOwner
	}

	now := time.Now().UTC()
	tour.Status = domain.TourStatusPublished
	tour.PublishedAt = &now
	if err := s.tours.Update(ctx, tour); err != nil {
		return nil, fmt.Errorf("publish tour: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTourPublished(ctx, tour); err != nil {
			slog.Warn("publish tour event failed", "tour_id", tourID, "error", err)
		}
	}
	if s.narration != nil {
		if err := s.narration.StartTourNarration(ctx, tourID); err != nil {
			slog.Warn("narration pipeline start failed", "tour_id", tourID, "error", err)
		}
	}

	return tour, nil
}

// AddSite appends a site to the tour's stop list and recomputes metrics.
func (s *TourService) AddSite(ctx context.Context, userID, tourID, siteID string, order int) error {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return err
	}
	if tour.OwnerID != userID {
		return ErrNotOwner
	}
	if err := s.tours.AddStop(ctx, tourID, siteID, order); err != nil {
		return fmt.Errorf("add stop: %w", err)
	}
	return s.RecalculateMetrics(ctx, tourID)
}

// RemoveSite removes a site from the tour's stop list and recomputes metrics.
func (s *TourService) RemoveSite(ctx context.Context, userID, tourID, siteID string) error {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return err
	}
	if tour.OwnerID != userID {
		return ErrNotOwner
	}
	if err := s.tours.RemoveStop(ctx, tourID, siteID); err != nil {
		return fmt.Errorf("remove stop: %w", err)
	}
	return s.RecalculateMetrics(ctx, tourID)
}

// ReorderSites replaces the visit order and recomputes metrics.
func (s *TourService) ReorderSites(ctx context.Context, userID, tourID string, siteIDsInOrder []string) error {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return err
	}
	if tour.OwnerID != userID {
		return ErrNotOwner
	}
	if err := s.tours.ReorderStops(ctx, tourID, siteIDsInOrder); err != nil {
		return fmt.Errorf("reorder stops: %w", err)
	}
	return s.RecalculateMetrics(ctx, tourID)
}

// RecalculateMetrics recomputes distance and duration from the tour's full
// current stop list and persists both values. Concurrent recalculations of
// the same tour resolve last-write-wins at the database.
func (s *TourService) RecalculateMetrics(ctx context.Context, tourID string) error {
	stops, err := s.tours.GetStops(ctx, tourID)
	if err != nil {
		return fmt.Errorf("load stops: %w", err)
	}

	m := touring.EstimateMetrics(stops)
	if err := s.tours.SetMetrics(ctx, tourID, m); err != nil {
		return fmt.Errorf("persist metrics: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMetricsRecalculated(ctx, tourID, m); err != nil {
			slog.Warn("publish metrics event failed", "tour_id", tourID, "error", err)
		}
	}
	return nil
}

// RecalculateAll recomputes metrics for every tour in tourIDs. Used when a
// site shared across tours changes or is deleted.
func (s *TourService) RecalculateAll(ctx context.Context, tourIDs []string) error {
	for _, id := range tourIDs {
		if err := s.RecalculateMetrics(ctx, id); err != nil {
			return fmt.Errorf("recalculate tour %s: %w", id, err)
		}
	}
	return nil
}
