package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client is a client-master record. Documents reference it by id when the
// caller assigned one; name stays a display attribute.
type Client struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines data access for client-master records.
type Repository interface {
	Create(ctx context.Context, client Client) (*Client, error)
	List(ctx context.Context, userID int64) ([]Client, error)
}

// SQLRepository provides PostgreSQL backed persistence.
type SQLRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *SQLRepository {
	return &SQLRepository{pool: pool}
}

// Create inserts a client record.
func (r *SQLRepository) Create(ctx context.Context, client Client) (*Client, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO clients (user_id, name, tax_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		client.UserID, client.Name, client.TaxID, client.CreatedAt).Scan(&client.ID)
	if err != nil {
		return nil, fmt.Errorf("directory: create client: %w", err)
	}
	return &client, nil
}

// List returns the user's client records.
func (r *SQLRepository) List(ctx context.Context, userID int64) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, name, tax_id, created_at FROM clients WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("directory: list clients: %w", err)
	}
	defer rows.Close()
	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.TaxID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("directory: scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: list rows: %w", err)
	}
	return clients, nil
}
