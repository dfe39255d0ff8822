package corpuscrawl

import "context"

// RobotsGate answers whether a URL is fetchable under a site's crawl
// policy. Policies are fetched lazily once per host and cached for the
// run. A policy that cannot be fetched or parsed is treated as
// allow-by-default (fail-open) and logged as a soft warning.
type RobotsGate interface {
	Allowed(ctx context.Context, url string) bool
}
