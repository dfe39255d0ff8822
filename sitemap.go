package corpuscrawl

import "context"

// SitemapService discovers URLs for frontier warming. Implementations
// check robots.txt Sitemap directives and the conventional sitemap
// locations under the site root, resolving sitemap indexes recursively.
// Discovery failures are soft: the crawl proceeds from the base seed.
type SitemapService interface {
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
