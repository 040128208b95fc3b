package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/strollcast/strollcast/internal/core/domain"
)

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

const cityColumns = `
	c.id, c.name, ST_Y(c.location::geometry), ST_X(c.location::geometry),
	COALESCE(c.hero_image_url, ''), COALESCE(c.hero_title, ''), COALESCE(c.hero_subtitle, ''),
	COALESCE(c.country, ''), COALESCE(c.state_province, ''), COALESCE(c.timezone, ''),
	c.active,
	(SELECT count(*) FROM tours t WHERE t.city = c.name AND t.status = 'published'),
	c.created_at`

func scanCity(row pgx.Row) (*domain.City, error) {
	var c domain.City
	err := row.Scan(&c.ID, &c.Name, &c.Location.Lat, &c.Location.Lon,
		&c.HeroImageURL, &c.HeroTitle, &c.HeroSubtitle,
		&c.Country, &c.StateProv, &c.Timezone,
		&c.Active, &c.TourCount, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a city.
func (r *CityRepo) Create(ctx context.Context, c *domain.City) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO cities (name, location, hero_image_url, hero_title, hero_subtitle,
		                    country, state_province, timezone, active)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, c.Name, c.Location.Lon, c.Location.Lat, c.HeroImageURL, c.HeroTitle, c.HeroSubtitle,
		c.Country, c.StateProv, c.Timezone, c.Active,
	).Scan(&c.ID, &c.CreatedAt)
}

// Update rewrites a city's fields.
func (r *CityRepo) Update(ctx context.Context, c *domain.City) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE cities
		SET name = $2, location = ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography,
		    hero_image_url = $5, hero_title = $6, hero_subtitle = $7,
		    country = $8, state_province = $9, timezone = $10, active = $11
		WHERE id = $1
	`, c.ID, c.Name, c.Location.Lon, c.Location.Lat,
		c.HeroImageURL, c.HeroTitle, c.HeroSubtitle,
		c.Country, c.StateProv, c.Timezone, c.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("city %s not found", c.ID)
	}
	return nil
}

// Deactivate hides a city from the mobile client without deleting its tours.
func (r *CityRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE cities SET active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("city %s not found", id)
	}
	return nil
}

// GetByID returns a city by UUID.
func (r *CityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	return scanCity(r.db.Pool.QueryRow(ctx,
		`SELECT `+cityColumns+` FROM cities c WHERE c.id = $1`, id))
}

// ListActive returns every active city.
func (r *CityRepo) ListActive(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+cityColumns+` FROM cities c WHERE c.active ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, *c)
	}
	return cities, rows.Err()
}

// FindByName returns active cities with the given name. Names are not
// unique (Springfield), so callers disambiguate by proximity.
func (r *CityRepo) FindByName(ctx context.Context, name string) ([]domain.City, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+cityColumns+` FROM cities c WHERE c.active AND lower(c.name) = lower($1)`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, *c)
	}
	return cities, rows.Err()
}
