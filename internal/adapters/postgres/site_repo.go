package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/strollcast/strollcast/internal/core/domain"
)

// SiteRepo implements ports.SiteRepository with pgx.
type SiteRepo struct {
	db *DB
}

// NewSiteRepo creates a new SiteRepo.
func NewSiteRepo(db *DB) *SiteRepo {
	return &SiteRepo{db: db}
}

const siteColumns = `
	id, title, COALESCE(description, ''),
	ST_Y(location::geometry), ST_X(location::geometry),
	COALESCE(city, ''), COALESCE(neighborhood, ''),
	COALESCE(image_url, ''), COALESCE(audio_url, ''), COALESCE(web_url, ''),
	COALESCE(keywords, '{}'), rating, COALESCE(place_id, ''), COALESCE(formatted_address, ''),
	created_at, updated_at`

func scanSite(row pgx.Row) (*domain.Site, error) {
	var s domain.Site
	err := row.Scan(
		&s.ID, &s.Title, &s.Description,
		&s.Location.Lat, &s.Location.Lon,
		&s.City, &s.Neighborhood,
		&s.ImageURL, &s.AudioURL, &s.WebURL,
		&s.Keywords, &s.Rating, &s.PlaceID, &s.FormattedAddress,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a site and fills in its generated ID and timestamps.
func (r *SiteRepo) Create(ctx context.Context, s *domain.Site) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO sites (title, description, location, city, neighborhood,
		                   image_url, audio_url, web_url, keywords, rating, place_id, formatted_address)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6,
		        $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, s.Title, s.Description, s.Location.Lon, s.Location.Lat, s.City, s.Neighborhood,
		s.ImageURL, s.AudioURL, s.WebURL, s.Keywords, s.Rating, s.PlaceID, s.FormattedAddress,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update rewrites a site's fields.
func (r *SiteRepo) Update(ctx context.Context, s *domain.Site) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE sites
		SET title = $2, description = $3,
		    location = ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography,
		    city = $6, neighborhood = $7, image_url = $8, audio_url = $9, web_url = $10,
		    keywords = $11, rating = $12, place_id = $13, formatted_address = $14,
		    updated_at = now()
		WHERE id = $1
	`, s.ID, s.Title, s.Description, s.Location.Lon, s.Location.Lat,
		s.City, s.Neighborhood, s.ImageURL, s.AudioURL, s.WebURL,
		s.Keywords, s.Rating, s.PlaceID, s.FormattedAddress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("site %s not found", s.ID)
	}
	return nil
}

// UpsertBatch inserts many sites using pgx.Batch, matching on place_id so
// bulk imports are idempotent.
func (r *SiteRepo) UpsertBatch(ctx context.Context, sites []domain.Site) error {
	batch := &pgx.Batch{}
	for _, s := range sites {
		batch.Queue(`
			INSERT INTO sites (title, description, location, city, neighborhood,
			                   image_url, audio_url, web_url, keywords, rating, place_id, formatted_address)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6,
			        $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (place_id) WHERE place_id <> '' DO UPDATE
			SET title = EXCLUDED.title, description = EXCLUDED.description,
			    location = EXCLUDED.location, rating = EXCLUDED.rating,
			    formatted_address = EXCLUDED.formatted_address, updated_at = now()
		`, s.Title, s.Description, s.Location.Lon, s.Location.Lat, s.City, s.Neighborhood,
			s.ImageURL, s.AudioURL, s.WebURL, s.Keywords, s.Rating, s.PlaceID, s.FormattedAddress)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range sites {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Delete removes a site. Tours referencing it lose the stop via cascade.
func (r *SiteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("site %s not found", id)
	}
	return nil
}

// GetByID returns a site by UUID.
func (r *SiteRepo) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	return scanSite(r.db.Pool.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = $1`, id))
}

// GetByIDs returns multiple sites by UUID, in arbitrary order.
func (r *SiteRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Site, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = ANY($1) ORDER BY title`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *s)
	}
	return sites, rows.Err()
}

// FindNearby returns sites within radiusMeters using PostGIS ST_DWithin.
func (r *SiteRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Site, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+siteColumns+`,
		       ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) as distance
		FROM sites
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		var s domain.Site
		var dist float64
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description,
			&s.Location.Lat, &s.Location.Lon,
			&s.City, &s.Neighborhood,
			&s.ImageURL, &s.AudioURL, &s.WebURL,
			&s.Keywords, &s.Rating, &s.PlaceID, &s.FormattedAddress,
			&s.CreatedAt, &s.UpdatedAt,
			&dist,
		); err != nil {
			return nil, err
		}
		s.Distance = &dist
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// Search performs fuzzy + full-text search on site titles and keywords.
func (r *SiteRepo) Search(ctx context.Context, query string, limit int) ([]domain.Site, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+siteColumns+`,
		       similarity(title, $1) as sim
		FROM sites
		WHERE title_vector @@ plainto_tsquery('english', $1)
		   OR title %> $1
		   OR $1 = ANY(keywords)
		ORDER BY sim DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		var s domain.Site
		var sim float64
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description,
			&s.Location.Lat, &s.Location.Lon,
			&s.City, &s.Neighborhood,
			&s.ImageURL, &s.AudioURL, &s.WebURL,
			&s.Keywords, &s.Rating, &s.PlaceID, &s.FormattedAddress,
			&s.CreatedAt, &s.UpdatedAt,
			&sim,
		); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// ToursContaining returns the IDs of every tour that includes the site.
func (r *SiteRepo) ToursContaining(ctx context.Context, siteID string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT tour_id FROM tour_sites WHERE site_id = $1`, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
