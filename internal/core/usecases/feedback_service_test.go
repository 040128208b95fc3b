package usecases_test

import (
	"context"
	"testing"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/usecases"
)

func intPtr(v int) *int { return &v }

func TestFeedbackService_Create_Validation(t *testing.T) {
	svc := usecases.NewFeedbackService(&mockFeedbackRepo{}, &mockTourRepo{}, nil)

	cases := []struct {
		name string
		fb   domain.Feedback
	}{
		{"no reference", domain.Feedback{Type: "comment"}},
		{"bad type", domain.Feedback{TourID: "t1", Type: "praise"}},
		{"rating missing value", domain.Feedback{TourID: "t1", Type: "rating"}},
		{"rating out of range", domain.Feedback{TourID: "t1", Type: "rating", Rating: intPtr(6)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), &tc.fb); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestFeedbackService_Create_RatingAggregates(t *testing.T) {
	feedback := &mockFeedbackRepo{
		ratingForTourFn: func(ctx context.Context, tourID string) (float64, int, error) {
			return 4.5, 2, nil
		},
	}
	var gotAvg float64
	var gotCount int
	tours := &mockTourRepo{
		setRatingFn: func(ctx context.Context, tourID string, avg float64, count int) error {
			gotAvg, gotCount = avg, count
			return nil
		},
	}

	svc := usecases.NewFeedbackService(feedback, tours, nil)
	fb, err := svc.Create(context.Background(), &domain.Feedback{TourID: "t1", Type: "rating", Rating: intPtr(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Status != "pending" {
		t.Errorf("expected pending status, got %q", fb.Status)
	}
	if gotAvg != 4.5 || gotCount != 2 {
		t.Errorf("expected tour rating 4.5/2, got %v/%d", gotAvg, gotCount)
	}
}

func TestFeedbackService_Create_CommentDoesNotAggregate(t *testing.T) {
	tours := &mockTourRepo{
		setRatingFn: func(ctx context.Context, tourID string, avg float64, count int) error {
			t.Error("comment feedback must not touch the tour rating")
			return nil
		},
	}
	svc := usecases.NewFeedbackService(&mockFeedbackRepo{}, tours, nil)
	if _, err := svc.Create(context.Background(), &domain.Feedback{SiteID: "s1", Type: "comment", Comment: "loved the stop"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFeedbackService_Review(t *testing.T) {
	var gotStatus string
	feedback := &mockFeedbackRepo{
		setStatusFn: func(ctx context.Context, id, status, notes, reviewer string) error {
			gotStatus = status
			return nil
		},
	}
	svc := usecases.NewFeedbackService(feedback, &mockTourRepo{}, nil)

	if err := svc.Review(context.Background(), "f1", "resolved", "", "admin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != "resolved" {
		t.Errorf("expected resolved, got %q", gotStatus)
	}
	if err := svc.Review(context.Background(), "f1", "archived", "", "admin-1"); err == nil {
		t.Error("expected an error for an unknown review status")
	}
}
