package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/ports"
)

var validFeedbackTypes = map[string]bool{
	"issue":      true,
	"rating":     true,
	"comment":    true,
	"suggestion": true,
}

// FeedbackService handles user feedback on tours and sites.
type FeedbackService struct {
	feedback  ports.FeedbackRepository
	tours     ports.TourRepository
	publisher ports.EventPublisher
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(feedback ports.FeedbackRepository, tours ports.TourRepository, publisher ports.EventPublisher) *FeedbackService {
	return &FeedbackService{feedback: feedback, tours: tours, publisher: publisher}
}

// Create stores a new feedback entry. Anonymous feedback (empty userID) is
// allowed. Rating feedback immediately re-aggregates the tour's rating.
func (s *FeedbackService) Create(ctx context.Context, fb *domain.Feedback) (*domain.Feedback, error) {
	if fb.TourID == "" && fb.SiteID == "" {
		return nil, fmt.Errorf("feedback must reference a tour or a site")
	}
	if !validFeedbackTypes[fb.Type] {
		return nil, fmt.Errorf("invalid feedback type %q", fb.Type)
	}
	if fb.Type == "rating" {
		if fb.Rating == nil || *fb.Rating < 1 || *fb.Rating > 5 {
			return nil, fmt.Errorf("rating must be between 1 and 5")
		}
	}
	fb.Status = "pending"

	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	if fb.Type == "rating" && fb.TourID != "" {
		if err := s.refreshTourRating(ctx, fb.TourID); err != nil {
			slog.Warn("rating aggregation failed", "tour_id", fb.TourID, "error", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishFeedbackCreated(ctx, fb); err != nil {
			slog.Warn("publish feedback event failed", "feedback_id", fb.ID, "error", err)
		}
	}
	return fb, nil
}

// ListByTour returns feedback for a tour.
func (s *FeedbackService) ListByTour(ctx context.Context, tourID string) ([]domain.Feedback, error) {
	return s.feedback.ListByTour(ctx, tourID)
}

// ListBySite returns feedback for a site.
func (s *FeedbackService) ListBySite(ctx context.Context, siteID string) ([]domain.Feedback, error) {
	return s.feedback.ListBySite(ctx, siteID)
}

// ListPending returns feedback awaiting review, for the admin queue.
func (s *FeedbackService) ListPending(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.feedback.ListByStatus(ctx, "pending", limit)
}

// Review transitions feedback through the moderation workflow.
func (s *FeedbackService) Review(ctx context.Context, id, status, adminNotes, reviewerID string) error {
	switch status {
	case "reviewed", "resolved", "dismissed":
	default:
		return fmt.Errorf("invalid review status %q", status)
	}
	return s.feedback.SetStatus(ctx, id, status, adminNotes, reviewerID)
}

func (s *FeedbackService) refreshTourRating(ctx context.Context, tourID string) error {
	avg, count, err := s.feedback.RatingForTour(ctx, tourID)
	if err != nil {
		return err
	}
	return s.tours.SetRating(ctx, tourID, avg, count)
}
