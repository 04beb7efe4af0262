package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panafact/panafact/internal/platform/db"
)

// ErrNotFound indicates the document does not exist for the user.
var ErrNotFound = errors.New("document: not found")

// SQLRepository provides PostgreSQL backed persistence. Invoices and quotes
// share the invoices table; expenses live in their own table. Both carry a
// JSONB payload with the full document state plus indexed columns for
// filtering, and List merges the two.
type SQLRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *SQLRepository {
	return &SQLRepository{pool: pool}
}

func tableFor(docType Type) string {
	if docType == TypeExpense {
		return "expenses"
	}
	return "invoices"
}

// Create inserts the document into its table.
func (r *SQLRepository) Create(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document: marshal payload: %w", err)
	}
	_, err = r.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (id, user_id, client_id, client_name, doc_type, status, doc_date, total, payload, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, tableFor(doc.Type)),
		doc.ID, doc.UserID, doc.ClientID, doc.ClientName, doc.Type, doc.Status, doc.Date, doc.Total, payload, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("document: insert: %w", err)
	}
	return nil
}

// Update replaces the stored document.
func (r *SQLRepository) Update(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document: marshal payload: %w", err)
	}
	var tag pgconn.CommandTag
	tag, err = r.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET client_id = $3, client_name = $4, status = $5, doc_date = $6, total = $7, payload = $8, updated_at = $9
WHERE id = $1 AND user_id = $2`, tableFor(doc.Type)),
		doc.ID, doc.UserID, doc.ClientID, doc.ClientName, doc.Status, doc.Date, doc.Total, payload, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("document: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get loads one document by id, looking in both tables.
func (r *SQLRepository) Get(ctx context.Context, userID int64, id string) (*Document, error) {
	for _, table := range []string{"invoices", "expenses"} {
		var payload []byte
		err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1 AND user_id = $2`, table), id, userID).Scan(&payload)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("document: get: %w", err)
		}
		var doc Document
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("document: unmarshal payload: %w", err)
		}
		return &doc, nil
	}
	return nil, ErrNotFound
}

// List returns the user's documents merged from both tables, newest first.
func (r *SQLRepository) List(ctx context.Context, userID int64, filter ListFilter) ([]Document, error) {
	tables := []string{"invoices", "expenses"}
	switch filter.Type {
	case TypeInvoice, TypeQuote:
		tables = []string{"invoices"}
	case TypeExpense:
		tables = []string{"expenses"}
	}

	var docs []Document
	for _, table := range tables {
		query := fmt.Sprintf(`SELECT payload FROM %s WHERE user_id = $1`, table)
		args := []interface{}{userID}
		if filter.Type != "" {
			args = append(args, filter.Type)
			query += fmt.Sprintf(" AND doc_type = $%d", len(args))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
		if !filter.From.IsZero() {
			args = append(args, filter.From)
			query += fmt.Sprintf(" AND doc_date >= $%d", len(args))
		}
		if !filter.To.IsZero() {
			args = append(args, filter.To)
			query += fmt.Sprintf(" AND doc_date <= $%d", len(args))
		}
		query += " ORDER BY doc_date DESC"

		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("document: list: %w", err)
		}
		for rows.Next() {
			var payload []byte
			if err := rows.Scan(&payload); err != nil {
				rows.Close()
				return nil, fmt.Errorf("document: scan: %w", err)
			}
			var doc Document
			if err := json.Unmarshal(payload, &doc); err != nil {
				rows.Close()
				return nil, fmt.Errorf("document: unmarshal payload: %w", err)
			}
			docs = append(docs, doc)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("document: list rows: %w", err)
		}
	}
	return docs, nil
}

// Delete removes the document from whichever table holds it. Both tables are
// probed inside one transaction so a concurrent insert cannot leave the id
// present in neither probe yet report not-found.
func (r *SQLRepository) Delete(ctx context.Context, userID int64, id string) error {
	deleted := false
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, table := range []string{"invoices", "expenses"} {
			tag, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table), id, userID)
			if err != nil {
				return fmt.Errorf("document: delete: %w", err)
			}
			if tag.RowsAffected() > 0 {
				deleted = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
