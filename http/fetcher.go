// Package http provides the HTTP implementations of the fetching and
// sitemap-discovery interfaces.
package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/corpuscrawl/corpuscrawl"
	"golang.org/x/time/rate"
)

// Ensure Fetcher implements corpuscrawl.Fetcher at compile time.
var _ corpuscrawl.Fetcher = (*Fetcher)(nil)

// maxBodyBytes bounds how much of a response is read. Documentation
// pages beyond this are truncated rather than exhausting memory.
const maxBodyBytes = 10 << 20

// Fetcher performs polite, rate-limited HTTP GETs. The limiter is
// shared across the whole run, so the configured delay is the minimum
// spacing between any two requests regardless of host. Exactly one
// attempt is made per URL.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	timeout   time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
// Defaults to corpuscrawl.DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLimiter sets the shared politeness limiter. A nil limiter
// disables request spacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewLimiter builds the run-global politeness limiter for a fixed
// inter-request delay. A zero delay means no spacing.
func NewLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// NewFetcher creates an HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   corpuscrawl.DefaultTimeout,
		userAgent: corpuscrawl.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch retrieves the URL and classifies the outcome. Timeouts and
// connection errors are FetchFailed; non-2xx statuses carry the code;
// non-text content types are a skip, not a failure.
func (f *Fetcher) Fetch(ctx context.Context, url string) corpuscrawl.FetchResult {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchHTTPError, Status: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextContentType(contentType) {
		return corpuscrawl.FetchResult{
			Outcome:     corpuscrawl.FetchNonText,
			Status:      resp.StatusCode,
			ContentType: contentType,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchFailed, Err: err}
	}

	return corpuscrawl.FetchResult{
		Outcome:     corpuscrawl.FetchOK,
		Status:      resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}
}

// Close releases resources. A no-op for the HTTP fetcher.
func (f *Fetcher) Close() error {
	return nil
}

// isTextContentType accepts HTML, XHTML and plain text responses.
// An absent header is accepted: many static doc servers omit it.
func isTextContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/xhtml+xml" ||
		mediaType == "application/xml"
}
