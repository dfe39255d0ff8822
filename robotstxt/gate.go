// Package robotstxt implements the robots.txt crawl-policy gate on top
// of temoto/robotstxt.
package robotstxt

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/temoto/robotstxt"
)

// Ensure Gate implements corpuscrawl.RobotsGate at compile time.
var _ corpuscrawl.RobotsGate = (*Gate)(nil)

// Gate answers allow/deny for candidate URLs. Policies are fetched
// lazily, once per host, and cached for the run. A policy that cannot
// be fetched or parsed fails open: the URL is allowed and a soft
// warning is logged.
type Gate struct {
	client    *http.Client
	userAgent string
	respect   bool
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// Option configures a Gate.
type Option func(*Gate)

// WithClient sets the HTTP client used to fetch policies.
func WithClient(c *http.Client) Option {
	return func(g *Gate) {
		if c != nil {
			g.client = c
		}
	}
}

// WithLogger sets the logger for soft warnings.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a Gate for the given user agent. When respect is
// false, Allowed always returns true without fetching any policy.
func NewGate(userAgent string, respect bool, opts ...Option) *Gate {
	g := &Gate{
		client:    http.DefaultClient,
		userAgent: userAgent,
		respect:   respect,
		logger:    slog.New(slog.DiscardHandler),
		cache:     make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allowed reports whether the URL is fetchable under the host's crawl
// policy.
func (g *Gate) Allowed(ctx context.Context, rawURL string) bool {
	if !g.respect {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return false
	}

	data := g.policy(ctx, u)
	if data == nil {
		// Fail open: an unavailable policy never blocks the crawl.
		return true
	}
	return data.TestAgent(u.Path, g.userAgent)
}

// policy returns the cached policy for the URL's host, fetching it on
// first use. Returns nil when the policy is unavailable.
func (g *Gate) policy(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	g.mu.Lock()
	data, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return data
	}

	data = g.fetch(ctx, key+"/robots.txt")

	g.mu.Lock()
	g.cache[key] = data
	g.mu.Unlock()
	return data
}

func (g *Gate) fetch(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		g.logger.Warn("robots.txt request failed", "url", robotsURL, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("robots.txt fetch failed", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Warn("robots.txt read failed", "url", robotsURL, "error", err)
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.logger.Warn("robots.txt parse failed", "url", robotsURL, "error", err)
		return nil
	}
	return data
}
