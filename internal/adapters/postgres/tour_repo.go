package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/strollcast/strollcast/internal/core/domain"
)

// TourRepo implements ports.TourRepository with pgx.
//
// Tours keep a denormalised center point (location) and the derived
// distance/duration columns so the discovery feed never has to join the
// stop list.
type TourRepo struct {
	db *DB
}

// NewTourRepo creates a new TourRepo.
func NewTourRepo(db *DB) *TourRepo {
	return &TourRepo{db: db}
}

const tourColumns = `
	id, owner_id, name, COALESCE(description, ''), COALESCE(city, ''), COALESCE(neighborhood, ''),
	ST_Y(location::geometry), ST_X(location::geometry),
	COALESCE(image_url, ''), COALESCE(audio_url, ''), COALESCE(map_image_url, ''),
	COALESCE(music_urls, '{}'),
	distance_meters, duration_minutes, average_rating, rating_count,
	status, created_at, updated_at, published_at`

func scanTour(row pgx.Row) (*domain.Tour, error) {
	var t domain.Tour
	var lat, lon *float64
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.City, &t.Neighborhood,
		&lat, &lon,
		&t.ImageURL, &t.AudioURL, &t.MapImageURL,
		&t.MusicURLs,
		&t.DistanceMeters, &t.DurationMinutes, &t.AverageRating, &t.RatingCount,
		&t.Status, &t.CreatedAt, &t.UpdatedAt, &t.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		t.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
	}
	return &t, nil
}

// Create inserts a tour and fills in its generated ID and timestamps.
func (r *TourRepo) Create(ctx context.Context, t *domain.Tour) error {
	var lat, lon *float64
	if t.Location != nil {
		lat, lon = &t.Location.Lat, &t.Location.Lon
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO tours (owner_id, name, description, city, neighborhood, location,
		                   image_url, audio_url, map_image_url, music_urls, status)
		VALUES ($1, $2, $3, $4, $5,
		        CASE WHEN $6::float8 IS NULL THEN NULL
		             ELSE ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography END,
		        $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, t.OwnerID, t.Name, t.Description, t.City, t.Neighborhood,
		lat, lon,
		t.ImageURL, t.AudioURL, t.MapImageURL, t.MusicURLs, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update rewrites a tour's editable fields.
func (r *TourRepo) Update(ctx context.Context, t *domain.Tour) error {
	var lat, lon *float64
	if t.Location != nil {
		lat, lon = &t.Location.Lat, &t.Location.Lon
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE tours
		SET name = $2, description = $3, city = $4, neighborhood = $5,
		    location = CASE WHEN $6::float8 IS NULL THEN NULL
		                    ELSE ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography END,
		    image_url = $8, audio_url = $9, map_image_url = $10, music_urls = $11,
		    status = $12, published_at = $13, updated_at = now()
		WHERE id = $1
	`, t.ID, t.Name, t.Description, t.City, t.Neighborhood,
		lat, lon,
		t.ImageURL, t.AudioURL, t.MapImageURL, t.MusicURLs,
		t.Status, t.PublishedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tour %s not found", t.ID)
	}
	return nil
}

// Delete removes a tour; tour_sites rows cascade.
func (r *TourRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tour %s not found", id)
	}
	return nil
}

// GetByID returns a tour by UUID, without its stop list.
func (r *TourRepo) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	return scanTour(r.db.Pool.QueryRow(ctx,
		`SELECT `+tourColumns+` FROM tours WHERE id = $1`, id))
}

// List returns tours matching the given filters. Empty filters match all.
func (r *TourRepo) List(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+tourColumns+`
		FROM tours
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR city = $2)
		  AND ($3 = '' OR neighborhood = $3)
		  AND ($4 = '' OR owner_id = $4)
		ORDER BY updated_at DESC
	`, status, city, neighborhood, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tours []domain.Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, *t)
	}
	return tours, rows.Err()
}

// GetStops returns the tour's stops ordered by position. Narration falls
// back to the site description when the stop has no bespoke text.
func (r *TourRepo) GetStops(ctx context.Context, tourID string) ([]domain.TourStop, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ts.site_id, s.title, ts.position,
		       ST_Y(s.location::geometry), ST_X(s.location::geometry),
		       COALESCE(NULLIF(ts.narration, ''), s.description, ''),
		       COALESCE(NULLIF(ts.audio_url, ''), s.audio_url, '')
		FROM tour_sites ts
		JOIN sites s ON s.id = ts.site_id
		WHERE ts.tour_id = $1
		ORDER BY ts.position
	`, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []domain.TourStop
	for rows.Next() {
		var st domain.TourStop
		var lat, lon *float64
		if err := rows.Scan(&st.SiteID, &st.Title, &st.Order, &lat, &lon, &st.Narration, &st.AudioURL); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			st.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// AddStop appends a site to the tour at the given position.
func (r *TourRepo) AddStop(ctx context.Context, tourID, siteID string, order int) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO tour_sites (tour_id, site_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (tour_id, site_id) DO UPDATE SET position = EXCLUDED.position
	`, tourID, siteID, order)
	return err
}

// RemoveStop detaches a site from the tour.
func (r *TourRepo) RemoveStop(ctx context.Context, tourID, siteID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM tour_sites WHERE tour_id = $1 AND site_id = $2`, tourID, siteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("site %s is not on tour %s", siteID, tourID)
	}
	return nil
}

// ReorderStops rewrites the positions of a tour's stops in one batch.
func (r *TourRepo) ReorderStops(ctx context.Context, tourID string, siteIDsInOrder []string) error {
	batch := &pgx.Batch{}
	for i, siteID := range siteIDsInOrder {
		batch.Queue(`
			UPDATE tour_sites SET position = $3
			WHERE tour_id = $1 AND site_id = $2
		`, tourID, siteID, i+1)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range siteIDsInOrder {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// SetMetrics persists recomputed distance/duration onto the tour.
func (r *TourRepo) SetMetrics(ctx context.Context, tourID string, m domain.TourMetrics) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE tours
		SET distance_meters = $2, duration_minutes = $3, updated_at = now()
		WHERE id = $1
	`, tourID, m.DistanceMeters, m.DurationMinutes)
	return err
}

// SetRating persists the aggregated rating for a tour.
func (r *TourRepo) SetRating(ctx context.Context, tourID string, average float64, count int) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE tours SET average_rating = $2, rating_count = $3 WHERE id = $1
	`, tourID, average, count)
	return err
}

// SetAudioURL stores the narration playlist URL produced by the pipeline.
func (r *TourRepo) SetAudioURL(ctx context.Context, tourID, audioURL string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE tours SET audio_url = $2, updated_at = now() WHERE id = $1
	`, tourID, audioURL)
	return err
}

// SetStopAudio stores a synthesised audio URL on a single stop.
func (r *TourRepo) SetStopAudio(ctx context.Context, tourID, siteID, audioURL string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE tour_sites SET audio_url = $3 WHERE tour_id = $1 AND site_id = $2
	`, tourID, siteID, audioURL)
	return err
}

// PublishedSummaries returns the slim projection consumed by proximity
// search, optionally filtered by city or owner.
func (r *TourRepo) PublishedSummaries(ctx context.Context, city, ownerID string) ([]domain.TourSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry), ST_X(location::geometry),
		       COALESCE(city, ''), COALESCE(neighborhood, ''), COALESCE(image_url, ''),
		       distance_meters, duration_minutes
		FROM tours
		WHERE status = 'published'
		  AND ($1 = '' OR city = $1)
		  AND ($2 = '' OR owner_id = $2)
	`, city, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.TourSummary
	for rows.Next() {
		var s domain.TourSummary
		var lat, lon *float64
		if err := rows.Scan(&s.ID, &s.Name, &lat, &lon, &s.City, &s.Neighborhood,
			&s.ImageURL, &s.DistanceMeters, &s.DurationMinutes); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			s.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
