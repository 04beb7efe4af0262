package document

import (
	"context"
	"time"
)

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Type   Type
	Status Status
	From   time.Time
	To     time.Time
}

// Repository defines data access for documents.
type Repository interface {
	Create(ctx context.Context, doc Document) error
	Update(ctx context.Context, doc Document) error
	Get(ctx context.Context, userID int64, id string) (*Document, error)
	List(ctx context.Context, userID int64, filter ListFilter) ([]Document, error)
	Delete(ctx context.Context, userID int64, id string) error
}
