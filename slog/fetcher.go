// Package slog provides logging decorators for crawl components.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/corpuscrawl/corpuscrawl"
)

// Ensure LoggingFetcher implements corpuscrawl.Fetcher.
var _ corpuscrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   corpuscrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next corpuscrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res corpuscrawl.FetchResult) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"outcome", res.Reason(),
			"status", res.Status,
			"bytes", len(res.Body),
			"duration", time.Since(begin),
			"err", res.Err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
