package directory

import (
	"context"
	"time"

	"github.com/panafact/panafact/internal/document"
)

// DocumentSource supplies the document collection for one user.
type DocumentSource interface {
	List(ctx context.Context, userID int64, filter document.ListFilter) ([]document.Document, error)
}

// Service coordinates client directory aggregation.
type Service struct {
	docs    DocumentSource
	repo    Repository
	matcher Matcher
}

// NewService builds Service instance. repo may be nil when no client-master
// table exists; matcher defaults to exact trimmed-name matching.
func NewService(docs DocumentSource, repo Repository, matcher Matcher) *Service {
	if matcher == nil {
		matcher = ExactMatcher{}
	}
	return &Service{docs: docs, repo: repo, matcher: matcher}
}

// Load fetches documents plus client records and runs a full aggregation
// pass.
func (s *Service) Load(ctx context.Context, userID int64) (Result, error) {
	docs, err := s.docs.List(ctx, userID, document.ListFilter{})
	if err != nil {
		return Result{}, err
	}
	var seeds []Seed
	if s.repo != nil {
		records, err := s.repo.List(ctx, userID)
		if err != nil {
			return Result{}, err
		}
		for _, rec := range records {
			id := rec.ID
			seeds = append(seeds, Seed{ClientID: &id, Name: rec.Name, TaxID: rec.TaxID})
		}
	}
	return AggregateClients(docs, seeds, s.matcher), nil
}

// CreateClient registers a client-master record with a stable identifier.
func (s *Service) CreateClient(ctx context.Context, userID int64, name, taxID string) (*Client, error) {
	return s.repo.Create(ctx, Client{UserID: userID, Name: name, TaxID: taxID, CreatedAt: time.Now()})
}

// ListClients returns the raw client-master records.
func (s *Service) ListClients(ctx context.Context, userID int64) ([]Client, error) {
	return s.repo.List(ctx, userID)
}
