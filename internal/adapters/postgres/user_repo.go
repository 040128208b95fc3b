package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/usecases"
)

// UserRepo implements ports.UserRepository with pgx.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user. A duplicate email maps to usecases.ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, password_hash, active)
		VALUES (lower($1), $2, $3, $4, true)
		RETURNING id, created_at
	`, u.Email, u.Name, u.Role, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return usecases.ErrEmailTaken
	}
	return err
}

func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
		&u.Active, &u.EmailVerified, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(r.db.Pool.QueryRow(ctx, `
		SELECT id, email, COALESCE(name, ''), role, password_hash,
		       active, email_verified, created_at, last_login_at
		FROM users WHERE id = $1
	`, id))
}

// GetByEmail returns a user by email, case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.db.Pool.QueryRow(ctx, `
		SELECT id, email, COALESCE(name, ''), role, password_hash,
		       active, email_verified, created_at, last_login_at
		FROM users WHERE email = lower($1)
	`, email))
}

// TouchLastLogin stamps a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	return err
}
