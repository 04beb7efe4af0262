package report

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/panafact/panafact/internal/directory"
	"github.com/panafact/panafact/internal/document"
)

// DocumentSource supplies the document collection for one user.
type DocumentSource interface {
	List(ctx context.Context, userID int64, filter document.ListFilter) ([]document.Document, error)
}

// Service coordinates report computation with caching and in-flight
// deduplication.
type Service struct {
	docs    DocumentSource
	cache   *Cache
	matcher directory.Matcher
	group   singleflight.Group
	now     func() time.Time
}

// NewService builds Service instance. cache may be nil (recompute always).
func NewService(docs DocumentSource, cache *Cache, matcher directory.Matcher) *Service {
	return &Service{docs: docs, cache: cache, matcher: matcher, now: time.Now}
}

// Summary returns the reporting dataset for the window, from cache when
// fresh. Concurrent recomputes for the same key collapse into one.
func (s *Service) Summary(ctx context.Context, userID int64, rng Range, start, end time.Time) (Summary, error) {
	now := s.now()
	window, err := ResolveWindow(rng, start, end, now)
	if err != nil {
		return Summary{}, err
	}
	key, err := s.cache.BuildKey(ctx, userID, "summary", string(rng),
		window.Start.Format("20060102"), window.End.Format("20060102"))
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.build(ctx, key, userID, window, now)
	})
	if err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *Service) build(ctx context.Context, key string, userID int64, window Window, now time.Time) (interface{}, error) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		docs, err := s.docs.List(ctx, userID, document.ListFilter{})
		if err != nil {
			return nil, err
		}
		return BuildSummary(docs, window, now, s.matcher), nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val, res.Err
	}
}

// Warmup precomputes the fixed-range summaries for a user, used by the
// background warmup job.
func (s *Service) Warmup(ctx context.Context, userID int64) error {
	for _, rng := range []Range{Range30D, Range90D, Range12M} {
		if _, err := s.Summary(ctx, userID, rng, time.Time{}, time.Time{}); err != nil {
			return err
		}
	}
	return nil
}
