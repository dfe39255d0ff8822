package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/corpuscrawl/corpuscrawl/crawl"
	"github.com/corpuscrawl/corpuscrawl/fs"
	"github.com/corpuscrawl/corpuscrawl/goquery"
	cchttp "github.com/corpuscrawl/corpuscrawl/http"
	"github.com/corpuscrawl/corpuscrawl/robotstxt"
	"github.com/corpuscrawl/corpuscrawl/rod"
	ccslog "github.com/corpuscrawl/corpuscrawl/slog"
	"github.com/corpuscrawl/corpuscrawl/sqlite"
	"github.com/corpuscrawl/corpuscrawl/trafilatura"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL string `arg:"" help:"Seed URL; its host and path prefix define the crawl scope"`

	Out      string `short:"o" default:"corpus_out" help:"Output directory"`
	MaxPages int    `default:"0" help:"Max URLs to process (0 = unlimited)"`

	Delay     time.Duration `default:"500ms" help:"Spacing between requests, applied crawl-wide"`
	Timeout   time.Duration `default:"15s" help:"Per-request timeout"`
	UserAgent string        `default:"corpuscrawl/1.0" help:"User-Agent header"`

	RespectRobots bool `default:"true" negatable:"" help:"Honor robots.txt disallow rules"`
	Sitemap       bool `help:"Seed the queue from the site's sitemap"`
	Resume        bool `help:"Append to existing output and skip already-crawled URLs"`

	Include []string `short:"i" help:"Only crawl URLs matching this regex (repeatable)"`
	Exclude []string `short:"x" help:"Skip URLs matching this regex (repeatable)"`

	ChunkSize    int    `default:"0" help:"Max characters per chunk (0 = whole page)"`
	ChunkOverlap int    `default:"120" help:"Overlap characters between chunks"`
	MinChars     int    `default:"0" help:"Skip pages with less cleaned text than this"`
	DedupKey     string `default:"content" enum:"content,url+content" help:"Dedup fingerprint key"`

	HeartbeatEvery int `default:"10" help:"Persist a stats snapshot every N pages"`
	Workers        int `short:"c" default:"1" help:"Concurrent page pipelines"`

	Render      bool   `help:"Fetch with a headless browser for JS-rendered sites"`
	Readability bool   `help:"Extract main content instead of whole-page text"`
	StateDB     string `help:"SQLite path for durable crawl state (default: re-scan output on resume)"`
	SaveText    bool   `help:"Also write cleaned page text under <out>/text/"`
	SaveHTML    bool   `help:"Also save raw fetched HTML under <out>/html/"`
	Verbose     bool   `short:"v" help:"Debug logging"`
}

// config translates parsed flags into the core crawl configuration.
func (cli *CLI) config() *corpuscrawl.Config {
	return &corpuscrawl.Config{
		BaseURL:        cli.URL,
		OutDir:         cli.Out,
		MaxPages:       cli.MaxPages,
		Delay:          cli.Delay,
		Timeout:        cli.Timeout,
		UserAgent:      cli.UserAgent,
		RespectRobots:  cli.RespectRobots,
		UseSitemap:     cli.Sitemap,
		Resume:         cli.Resume,
		IncludeRegex:   cli.Include,
		ExcludeRegex:   cli.Exclude,
		ChunkSize:      cli.ChunkSize,
		ChunkOverlap:   cli.ChunkOverlap,
		MinChars:       cli.MinChars,
		DedupKeyMode:   corpuscrawl.KeyMode(cli.DedupKey),
		HeartbeatEvery: cli.HeartbeatEvery,
		Workers:        cli.Workers,
	}
}

// Run wires the crawl pipeline from flags and executes it.
func (cli *CLI) Run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg := cli.config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	include, err := compilePatterns(cfg.IncludeRegex)
	if err != nil {
		return err
	}
	exclude, err := compilePatterns(cfg.ExcludeRegex)
	if err != nil {
		return err
	}

	keyMode, err := corpuscrawl.ParseKeyMode(cli.DedupKey)
	if err != nil {
		return err
	}

	// State store: SQLite when requested, otherwise state is
	// reconstructed by scanning prior output.
	var store corpuscrawl.StateStore
	if cli.StateDB != "" {
		db := sqlite.NewDB(cli.StateDB)
		if err := db.Open(); err != nil {
			return fmt.Errorf("opening state database at %q: %w", cli.StateDB, err)
		}
		state := sqlite.NewState(db)
		// A fresh run truncates the corpus files; state rows from a
		// prior run would mark chunks as written that the truncation
		// just erased.
		if !cfg.Resume {
			if err := state.Reset(ctx); err != nil {
				return fmt.Errorf("resetting state database: %w", err)
			}
		}
		store = state
	} else {
		store = fs.NewState(cfg.OutDir)
	}
	defer store.Close()

	frontier, err := crawl.NewFrontier(crawl.FrontierConfig{
		BaseURL:  cfg.BaseURL,
		Include:  include,
		Exclude:  exclude,
		MaxPages: cfg.MaxPages,
	})
	if err != nil {
		return err
	}

	dedup := crawl.NewDedup()
	firstSeq := 0

	// Prior state is loaded before the writer opens the output files:
	// without --resume the writer truncates them.
	if cfg.Resume {
		state, err := store.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading crawl state: %w", err)
		}
		frontier.RestoreVisited(state.Visited)
		dedup.Restore(state.Hashes)
		firstSeq = state.NextSequenceID
		logger.Info("resuming crawl",
			"visited", len(state.Visited),
			"hashes", len(state.Hashes),
			"next_seq", firstSeq,
		)
	}

	writer, err := fs.NewWriter(cfg.OutDir,
		fs.WithResume(cfg.Resume),
		fs.WithSaveText(cli.SaveText),
		fs.WithSaveHTML(cli.SaveHTML),
	)
	if err != nil {
		return err
	}
	defer writer.Close()

	// The limiter is shared so the inter-request delay holds across
	// workers and the sitemap warm-up alike.
	limiter := cchttp.NewLimiter(cfg.Delay)

	var fetcher corpuscrawl.Fetcher
	if cli.Render {
		fetcher, err = rod.NewFetcher(
			rod.WithLimiter(limiter),
			rod.WithFetchTimeout(cfg.Timeout),
		)
		if err != nil {
			return fmt.Errorf("starting browser fetcher: %w", err)
		}
	} else {
		fetcher = cchttp.NewFetcher(
			cchttp.WithLimiter(limiter),
			cchttp.WithTimeout(cfg.Timeout),
			cchttp.WithUserAgent(cfg.UserAgent),
		)
	}
	fetcher = ccslog.NewLoggingFetcher(fetcher, logger)
	defer fetcher.Close()

	var cleaner corpuscrawl.Cleaner
	if cli.Readability {
		cleaner = trafilatura.NewCleaner()
	} else {
		cleaner = goquery.NewCleaner()
	}

	gate := robotstxt.NewGate(cfg.UserAgent, cfg.RespectRobots, robotstxt.WithLogger(logger))

	frontier.Seed([]string{cfg.BaseURL})
	if cfg.UseSitemap {
		var sitemaps corpuscrawl.SitemapService = cchttp.NewSitemapService(nil)
		sitemaps = ccslog.NewLoggingSitemapService(sitemaps, logger)
		urls, err := sitemaps.DiscoverURLs(ctx, cfg.BaseURL)
		if err != nil {
			logger.Warn("sitemap discovery failed", "error", err)
		} else {
			frontier.Seed(urls)
		}
	}

	engine := &crawl.Engine{
		Frontier:        frontier,
		Robots:          gate,
		Fetcher:         fetcher,
		Cleaner:         cleaner,
		Hasher:          crawl.NewHasher(keyMode),
		Dedup:           dedup,
		Writer:          writer,
		State:           store,
		Logger:          logger,
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		MinChars:        cfg.MinChars,
		HeartbeatEvery:  cfg.HeartbeatEvery,
		Workers:         cfg.Workers,
		FirstSequenceID: firstSeq,
	}

	stats, err := engine.Run(ctx)
	if stats != nil {
		printSummary(stdout, cfg.OutDir, stats)
	}
	return err
}

// compilePatterns compiles user regex flags, surfacing the offending
// pattern on error.
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, corpuscrawl.Errorf(corpuscrawl.EINVALID, "invalid regex %q: %v", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func printSummary(w io.Writer, outDir string, stats *corpuscrawl.Stats) {
	fmt.Fprintf(w, "Crawl %s finished\n", stats.RunID)
	fmt.Fprintf(w, "  pages fetched:  %d\n", stats.PagesFetched)
	fmt.Fprintf(w, "  pages skipped:  %d\n", stats.PagesSkipped)
	fmt.Fprintf(w, "  pages failed:   %d\n", stats.PagesFailed)
	fmt.Fprintf(w, "  chunks written: %d\n", stats.ChunksWritten)
	fmt.Fprintf(w, "  chunks deduped: %d\n", stats.ChunksDeduped)
	fmt.Fprintf(w, "  queue peek:     %d\n", stats.QueuePeek)
	fmt.Fprintf(w, "Corpus written to %s\n", outDir)
}
