package tax

import (
	"context"
	"time"

	"github.com/panafact/panafact/internal/document"
	"github.com/panafact/panafact/internal/report"
	"github.com/panafact/panafact/internal/users"
)

// DocumentSource supplies the document collection for one user.
type DocumentSource interface {
	List(ctx context.Context, userID int64, filter document.ListFilter) ([]document.Document, error)
}

// Service computes tax projections over a user's documents.
type Service struct {
	docs DocumentSource
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(docs DocumentSource) *Service {
	return &Service{docs: docs, now: time.Now}
}

// Projection resolves the requested window and runs the estimate for the
// user's entity type.
func (s *Service) Projection(ctx context.Context, userID int64, entity users.EntityType, rng report.Range, start, end time.Time) (Projection, error) {
	now := s.now()
	window, err := report.ResolveWindow(rng, start, end, now)
	if err != nil {
		return Projection{}, err
	}
	docs, err := s.docs.List(ctx, userID, document.ListFilter{})
	if err != nil {
		return Projection{}, err
	}
	return Project(docs, window, entity, now), nil
}
