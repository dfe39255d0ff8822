package mock

import (
	"context"

	"github.com/corpuscrawl/corpuscrawl"
)

var _ corpuscrawl.StateStore = (*StateStore)(nil)

// StateStore is a mock implementation of corpuscrawl.StateStore.
type StateStore struct {
	LoadFn        func(ctx context.Context) (*corpuscrawl.CrawlState, error)
	RecordVisitFn func(ctx context.Context, url string, sequenceID int) error
	RecordHashFn  func(ctx context.Context, digest string) error
	CloseFn       func() error
}

func (s *StateStore) Load(ctx context.Context) (*corpuscrawl.CrawlState, error) {
	return s.LoadFn(ctx)
}

func (s *StateStore) RecordVisit(ctx context.Context, url string, sequenceID int) error {
	if s.RecordVisitFn == nil {
		return nil
	}
	return s.RecordVisitFn(ctx, url, sequenceID)
}

func (s *StateStore) RecordHash(ctx context.Context, digest string) error {
	if s.RecordHashFn == nil {
		return nil
	}
	return s.RecordHashFn(ctx, digest)
}

func (s *StateStore) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
