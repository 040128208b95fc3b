package postgres

import (
	"context"

	"github.com/strollcast/strollcast/internal/core/domain"
)

// NeighborhoodRepo implements ports.NeighborhoodRepository with pgx.
type NeighborhoodRepo struct {
	db *DB
}

// NewNeighborhoodRepo creates a new NeighborhoodRepo.
func NewNeighborhoodRepo(db *DB) *NeighborhoodRepo {
	return &NeighborhoodRepo{db: db}
}

// Upsert inserts or replaces the description for a city/neighborhood pair.
func (r *NeighborhoodRepo) Upsert(ctx context.Context, nd *domain.NeighborhoodDescription) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO neighborhood_descriptions (city, neighborhood, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (city, neighborhood) DO UPDATE
		SET description = EXCLUDED.description, updated_at = now()
		RETURNING id, created_at, updated_at
	`, nd.City, nd.Neighborhood, nd.Description).Scan(&nd.ID, &nd.CreatedAt, &nd.UpdatedAt)
}

// Get returns the description for a city/neighborhood pair.
func (r *NeighborhoodRepo) Get(ctx context.Context, city, neighborhood string) (*domain.NeighborhoodDescription, error) {
	var nd domain.NeighborhoodDescription
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, city, neighborhood, description, created_at, updated_at
		FROM neighborhood_descriptions
		WHERE city = $1 AND neighborhood = $2
	`, city, neighborhood).Scan(&nd.ID, &nd.City, &nd.Neighborhood, &nd.Description, &nd.CreatedAt, &nd.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &nd, nil
}

// ListByCity returns every described neighborhood in a city.
func (r *NeighborhoodRepo) ListByCity(ctx context.Context, city string) ([]domain.NeighborhoodDescription, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, city, neighborhood, description, created_at, updated_at
		FROM neighborhood_descriptions
		WHERE city = $1
		ORDER BY neighborhood
	`, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.NeighborhoodDescription
	for rows.Next() {
		var nd domain.NeighborhoodDescription
		if err := rows.Scan(&nd.ID, &nd.City, &nd.Neighborhood, &nd.Description, &nd.CreatedAt, &nd.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, nd)
	}
	return list, rows.Err()
}
