package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("users: not found")

// Repository defines data access for users.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, user User) error
}

// SQLRepository provides PostgreSQL backed persistence.
type SQLRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *SQLRepository {
	return &SQLRepository{pool: pool}
}

// Get loads one user by id.
func (r *SQLRepository) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `SELECT id, email, name, tax_id, entity_type, token_hash, created_at, updated_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.TaxID, &u.EntityType, &u.TokenHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}
	return &u, nil
}

// UpdateProfile persists the editable profile fields.
func (r *SQLRepository) UpdateProfile(ctx context.Context, user User) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET name = $2, tax_id = $3, entity_type = $4, updated_at = $5 WHERE id = $1`,
		user.ID, user.Name, user.TaxID, user.EntityType, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("users: update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
