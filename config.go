package corpuscrawl

import (
	"strings"
	"time"
)

// Default configuration values, matching the conventional settings for
// polite documentation crawls.
const (
	DefaultDelay          = 500 * time.Millisecond
	DefaultTimeout        = 15 * time.Second
	DefaultChunkOverlap   = 120
	DefaultHeartbeatEvery = 10
	DefaultUserAgent      = "corpuscrawl/1.0"
)

// Config holds the crawl options consumed by the core.
type Config struct {
	// BaseURL is the seed URL; its host and path prefix define the
	// crawl scope.
	BaseURL string

	// OutDir is the output directory for corpus files.
	OutDir string

	// MaxPages caps the number of URLs popped from the frontier.
	// Zero means unlimited.
	MaxPages int

	// Delay is the fixed inter-request spacing, applied globally
	// across the run.
	Delay time.Duration

	// Timeout is the per-fetch timeout.
	Timeout time.Duration

	UserAgent     string
	RespectRobots bool
	UseSitemap    bool
	Resume        bool

	// IncludeRegex and ExcludeRegex filter URLs at admission time.
	// If include patterns are set, a URL must match at least one;
	// a URL matching any exclude pattern is rejected.
	IncludeRegex []string
	ExcludeRegex []string

	// ChunkSize is the chunk window in characters; 0 means whole-page
	// chunks. ChunkOverlap is the window overlap; values >= ChunkSize
	// are treated as 0.
	ChunkSize    int
	ChunkOverlap int

	// MinChars skips pages whose cleaned text is shorter. 0 disables
	// the floor.
	MinChars int

	DedupKeyMode KeyMode

	// HeartbeatEvery emits a progress snapshot every N pops.
	HeartbeatEvery int

	// Workers bounds the fetch worker pool. Values <= 1 select the
	// sequential loop.
	Workers int
}

// Validate returns an error if the configuration is unusable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return Errorf(EINVALID, "base URL required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return Errorf(EINVALID, "base URL must be http or https")
	}
	if c.OutDir == "" {
		return Errorf(EINVALID, "output directory required")
	}
	if c.ChunkSize < 0 || c.ChunkOverlap < 0 {
		return Errorf(EINVALID, "chunk size and overlap must be non-negative")
	}
	if c.MinChars < 0 {
		return Errorf(EINVALID, "min chars must be non-negative")
	}
	if c.Delay < 0 || c.Timeout < 0 {
		return Errorf(EINVALID, "delay and timeout must be non-negative")
	}
	if c.DedupKeyMode != "" {
		if _, err := ParseKeyMode(string(c.DedupKeyMode)); err != nil {
			return err
		}
	}
	return nil
}
