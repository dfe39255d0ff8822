package crawl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/corpuscrawl/corpuscrawl"
	"github.com/corpuscrawl/corpuscrawl/bloom"
)

// Compile-time interface verification.
var _ corpuscrawl.Frontier = (*Frontier)(nil)

// Extensions admitted by the frontier. The empty extension covers
// clean directory-style URLs.
var crawlableExts = map[string]bool{
	"":      true,
	".html": true,
	".htm":  true,
	".md":   true,
	".txt":  true,
	".php":  true,
	".aspx": true,
}

// Frontier sizing for the offered-URL Bloom filter.
const (
	frontierExpectedURLs      = 50000
	frontierFalsePositiveRate = 0.001
)

// FrontierConfig configures admission filtering and the pop cap.
type FrontierConfig struct {
	// BaseURL defines the crawl scope: admitted URLs share its host
	// and path prefix.
	BaseURL string

	// Include and Exclude are the admission regex filters.
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp

	// MaxPages caps the number of pops; 0 means unlimited.
	MaxPages int
}

// Frontier is an in-memory FIFO URL frontier with exact visited
// tracking and Bloom-filter duplicate suppression. The visited set
// stores 64-bit URL hashes so memory stays bounded for frontiers that
// grow to tens of thousands of URLs. It is safe for concurrent use.
type Frontier struct {
	mu       sync.Mutex
	baseURL  string
	baseHost string
	basePath string
	include  []*regexp.Regexp
	exclude  []*regexp.Regexp
	maxPages int

	queue     []corpuscrawl.PendingURL
	offered   *bloom.Filter
	visited   map[uint64]struct{}
	popped    int
	queuePeek int
}

// NewFrontier creates a Frontier scoped to the configured base URL.
// Returns EINVALID if the base URL cannot be normalized.
func NewFrontier(cfg FrontierConfig) (*Frontier, error) {
	base := NormalizeURL(cfg.BaseURL)
	if base == "" {
		return nil, corpuscrawl.Errorf(corpuscrawl.EINVALID, "invalid base URL %q", cfg.BaseURL)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, corpuscrawl.Errorf(corpuscrawl.EINVALID, "invalid base URL %q: %v", cfg.BaseURL, err)
	}
	basePath := u.Path
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}

	return &Frontier{
		baseURL:  base,
		baseHost: u.Host,
		basePath: basePath,
		include:  cfg.Include,
		exclude:  cfg.Exclude,
		maxPages: cfg.MaxPages,
		offered:  bloom.NewFilter(frontierExpectedURLs, frontierFalsePositiveRate),
		visited:  make(map[uint64]struct{}),
	}, nil
}

// NormalizeURL canonicalizes a URL for frontier identity: the query
// and fragment are dropped and directory-style paths gain a trailing
// slash. Returns "" for non-http(s) or unparsable URLs.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	p := u.Path
	if p == "" {
		p = "/"
	}
	if path.Ext(p) == "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	u.Path = p
	return u.String()
}

// Seed adds starting URLs at depth 0 through the admission filter.
func (f *Frontier) Seed(urls []string) {
	for _, u := range urls {
		f.Offer(u, -1)
	}
}

// Offer normalizes a discovered link and enqueues it if admitted.
func (f *Frontier) Offer(rawURL string, fromDepth int) bool {
	normalized := NormalizeURL(rawURL)
	if normalized == "" {
		return false
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return false
	}
	// The base URL bypasses the admission filter. A file-like base
	// path (for example /docs/index.html) falls outside its own
	// prefix scope, and the crawl must always cover at least the
	// page it was pointed at.
	if normalized != f.baseURL {
		if u.Host != f.baseHost || !strings.HasPrefix(u.Path, f.basePath) {
			return false
		}
		if !crawlableExts[strings.ToLower(path.Ext(u.Path))] {
			return false
		}
		if len(f.include) > 0 {
			matched := false
			for _, re := range f.include {
				if re.MatchString(normalized) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		for _, re := range f.exclude {
			if re.MatchString(normalized) {
				return false
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.visited[urlKey(normalized)]; ok {
		return false
	}
	// The offered filter covers everything ever enqueued, so it also
	// suppresses currently-pending duplicates.
	if f.offered.Contains(normalized) {
		return false
	}
	f.offered.Add(normalized)

	f.queue = append(f.queue, corpuscrawl.PendingURL{
		URL:   normalized,
		Depth: fromDepth + 1,
	})
	f.recordPeekLocked()
	return true
}

// Pop removes and returns the next URL in FIFO order. Returns false
// when the queue is empty or the pop cap has been reached.
func (f *Frontier) Pop() (corpuscrawl.PendingURL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.maxPages > 0 && f.popped >= f.maxPages {
		return corpuscrawl.PendingURL{}, false
	}
	if len(f.queue) == 0 {
		return corpuscrawl.PendingURL{}, false
	}

	pending := f.queue[0]
	f.queue = f.queue[1:]
	f.popped++
	f.recordPeekLocked()
	return pending, true
}

// MarkVisited moves a URL into the visited set.
func (f *Frontier) MarkVisited(rawURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited[urlKey(rawURL)] = struct{}{}
}

// RestoreVisited preloads the visited set from persisted state so a
// resumed run never re-enqueues prior URLs.
func (f *Frontier) RestoreVisited(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range urls {
		if n := NormalizeURL(u); n != "" {
			f.visited[urlKey(n)] = struct{}{}
		}
	}
}

// Len returns the number of pending URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// QueuePeek returns the pending-size high-water mark, checked at every
// push and pop.
func (f *Frontier) QueuePeek() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queuePeek
}

func (f *Frontier) recordPeekLocked() {
	if len(f.queue) > f.queuePeek {
		f.queuePeek = len(f.queue)
	}
}

func urlKey(u string) uint64 {
	return xxhash.Sum64String(u)
}
