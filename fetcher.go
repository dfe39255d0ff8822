package corpuscrawl

import (
	"context"
	"fmt"
)

// FetchOutcome classifies the result of a fetch attempt.
type FetchOutcome int

// Fetch outcomes. Only FetchOK yields page content; FetchNonText is a
// skip, the remaining outcomes are failures.
const (
	FetchOK FetchOutcome = iota
	FetchNonText
	FetchHTTPError
	FetchFailed
)

// FetchResult is the value returned by a fetch attempt. Failures are
// expressed as data, not errors, so handling them is a pure decision.
type FetchResult struct {
	Outcome     FetchOutcome
	Status      int
	ContentType string
	Body        []byte
	Err         error
}

// Reason describes a non-OK result for logging.
func (r FetchResult) Reason() string {
	switch r.Outcome {
	case FetchNonText:
		return fmt.Sprintf("non-text content type %q", r.ContentType)
	case FetchHTTPError:
		return fmt.Sprintf("HTTP %d", r.Status)
	case FetchFailed:
		if r.Err != nil {
			return r.Err.Error()
		}
		return "request failed"
	default:
		return ""
	}
}

// Fetcher performs a single polite HTTP GET per URL. Implementations
// enforce the global inter-request delay and the per-request timeout;
// there is no internal retry loop. Repeat attempts are a resume-driven
// re-crawl, never automatic.
type Fetcher interface {
	// Fetch retrieves the URL and classifies the outcome.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) FetchResult

	// Close releases fetcher resources (e.g. a browser process).
	Close() error
}
