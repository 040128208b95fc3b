package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/strollcast/strollcast/internal/core/domain"
)

// FeedbackRepo implements ports.FeedbackRepository with pgx.
type FeedbackRepo struct {
	db *DB
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

const feedbackColumns = `
	id, COALESCE(tour_id::text, ''), COALESCE(site_id::text, ''), COALESCE(user_id::text, ''),
	type, rating, COALESCE(comment, ''), status, COALESCE(admin_notes, ''),
	created_at, reviewed_at, COALESCE(reviewed_by::text, '')`

func scanFeedback(row pgx.Row) (*domain.Feedback, error) {
	var fb domain.Feedback
	err := row.Scan(&fb.ID, &fb.TourID, &fb.SiteID, &fb.UserID,
		&fb.Type, &fb.Rating, &fb.Comment, &fb.Status, &fb.AdminNotes,
		&fb.CreatedAt, &fb.ReviewedAt, &fb.ReviewedBy)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// Create inserts a feedback entry.
func (r *FeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO feedback (tour_id, site_id, user_id, type, rating, comment, status)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, '')::uuid, NULLIF($3, '')::uuid, $4, $5, $6, $7)
		RETURNING id, created_at
	`, fb.TourID, fb.SiteID, fb.UserID, fb.Type, fb.Rating, fb.Comment, fb.Status,
	).Scan(&fb.ID, &fb.CreatedAt)
}

// GetByID returns a feedback entry by UUID.
func (r *FeedbackRepo) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	return scanFeedback(r.db.Pool.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id))
}

func (r *FeedbackRepo) list(ctx context.Context, query string, args ...any) ([]domain.Feedback, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *fb)
	}
	return list, rows.Err()
}

// ListByTour returns feedback on a tour, newest first.
func (r *FeedbackRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Feedback, error) {
	return r.list(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE tour_id = $1 ORDER BY created_at DESC`, tourID)
}

// ListBySite returns feedback on a site, newest first.
func (r *FeedbackRepo) ListBySite(ctx context.Context, siteID string) ([]domain.Feedback, error) {
	return r.list(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE site_id = $1 ORDER BY created_at DESC`, siteID)
}

// ListByStatus returns feedback in a given moderation state, oldest first
// so the review queue is FIFO.
func (r *FeedbackRepo) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Feedback, error) {
	return r.list(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE status = $1 ORDER BY created_at LIMIT $2`, status, limit)
}

// SetStatus transitions a feedback entry through moderation.
func (r *FeedbackRepo) SetStatus(ctx context.Context, id, status, adminNotes, reviewerID string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE feedback
		SET status = $2, admin_notes = $3, reviewed_by = NULLIF($4, '')::uuid, reviewed_at = now()
		WHERE id = $1
	`, id, status, adminNotes, reviewerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("feedback %s not found", id)
	}
	return nil
}

// RatingForTour aggregates rating-type feedback for a tour.
func (r *FeedbackRepo) RatingForTour(ctx context.Context, tourID string) (float64, int, error) {
	var avg float64
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(avg(rating), 0), count(*)
		FROM feedback
		WHERE tour_id = $1 AND type = 'rating' AND rating IS NOT NULL
	`, tourID).Scan(&avg, &count)
	return avg, count, err
}
