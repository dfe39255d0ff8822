// Package rod provides a browser-based fetcher for JavaScript-rendered
// documentation sites using Chrome automation.
package rod

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/time/rate"

	"github.com/corpuscrawl/corpuscrawl"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements corpuscrawl.Fetcher at compile time.
var _ corpuscrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a headless Chrome browser. It
// is used in place of the plain HTTP fetcher for sites that build
// their content client-side. Fetcher is safe for concurrent use by
// multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	limiter *rate.Limiter
	timeout time.Duration
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimiter applies a politeness rate limiter waited on before every
// navigation. The limiter is typically shared with other fetchers so
// the delay applies crawl-wide.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = limiter }
}

// WithFetchTimeout bounds how long a single page may take to render.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) { f.timeout = timeout }
}

// NewFetcher creates a Fetcher backed by a managed headless Chrome
// browser. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}

	f := &Fetcher{
		manager: manager,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch navigates to the URL, waits for the page to load, and returns
// the rendered HTML. The browser serves whatever the site returns, so
// rendered results always report as HTML with status 200; navigation
// and render errors map to a failed outcome.
func (f *Fetcher) Fetch(ctx context.Context, url string) corpuscrawl.FetchResult {
	if f.closed.Load() {
		return corpuscrawl.FetchResult{
			Outcome: corpuscrawl.FetchFailed,
			Err:     corpuscrawl.Errorf(corpuscrawl.EINVALID, "fetcher is closed"),
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
	}

	html, err := page.HTML()
	if err != nil {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
	}
	f.manager.IncrementPageCount()

	return corpuscrawl.FetchResult{
		Outcome:     corpuscrawl.FetchOK,
		Status:      http.StatusOK,
		ContentType: "text/html",
		Body:        []byte(html),
	}
}

// Close releases browser resources. Close is safe to call multiple
// times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
