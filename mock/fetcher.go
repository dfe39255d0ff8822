package mock

import (
	"context"

	"github.com/corpuscrawl/corpuscrawl"
)

var _ corpuscrawl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of corpuscrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) corpuscrawl.FetchResult
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) corpuscrawl.FetchResult {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
