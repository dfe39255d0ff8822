package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/corpuscrawl/corpuscrawl/crawl"
	"github.com/corpuscrawl/corpuscrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingWriter records everything the engine writes, safe for use
// with concurrent workers.
type capturingWriter struct {
	mu     sync.Mutex
	chunks []corpuscrawl.ChunkRecord
	pages  []corpuscrawl.PageRecord
	stats  []corpuscrawl.Stats
}

func (w *capturingWriter) writer() *mock.CorpusWriter {
	return &mock.CorpusWriter{
		WriteChunkFn: func(rec *corpuscrawl.ChunkRecord) error {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.chunks = append(w.chunks, *rec)
			return nil
		},
		WritePageFn: func(page *corpuscrawl.PageRecord) error {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.pages = append(w.pages, *page)
			return nil
		},
		WriteStatsFn: func(stats *corpuscrawl.Stats) error {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.stats = append(w.stats, *stats)
			return nil
		},
	}
}

// site builds a fetcher and cleaner serving a static page graph. Pages
// map URL to text content; links map URL to outgoing links.
func site(pages map[string]string, links map[string][]string) (*mock.Fetcher, *mock.Cleaner) {
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) corpuscrawl.FetchResult {
			if _, ok := pages[url]; !ok {
				return corpuscrawl.FetchResult{Outcome: corpuscrawl.FetchHTTPError, Status: 404}
			}
			return corpuscrawl.FetchResult{
				Outcome:     corpuscrawl.FetchOK,
				Status:      200,
				ContentType: "text/html",
				Body:        []byte(url),
			}
		},
	}
	cleaner := &mock.Cleaner{
		CleanFn: func(html []byte, pageURL string) (*corpuscrawl.CleanResult, error) {
			return &corpuscrawl.CleanResult{
				Text:  pages[pageURL],
				Title: "Title of " + pageURL,
				Links: links[pageURL],
			}, nil
		},
	}
	return fetcher, cleaner
}

func seededFrontier(t *testing.T, seeds ...string) *crawl.Frontier {
	t.Helper()
	f, err := crawl.NewFrontier(crawl.FrontierConfig{BaseURL: "https://example.com/docs/"})
	require.NoError(t, err)
	f.Seed(seeds)
	return f
}

func TestEngine_Run_crawls_and_writes_corpus(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{
			"https://example.com/docs/":       "root page text",
			"https://example.com/docs/a.html": "page a text",
			"https://example.com/docs/b.html": "page b text",
		},
		map[string][]string{
			"https://example.com/docs/": {
				"https://example.com/docs/a.html",
				"https://example.com/docs/b.html",
			},
		},
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/"),
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer:   out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.PagesFetched)
	assert.Equal(t, 0, stats.PagesSkipped)
	assert.Equal(t, 0, stats.PagesFailed)
	assert.Equal(t, 3, stats.ChunksWritten)
	assert.Equal(t, 0, stats.ChunksDeduped)
	assert.Equal(t, 2, stats.QueuePeek)
	assert.NotEmpty(t, stats.RunID)
	assert.False(t, stats.FinishedAt.IsZero())

	require.Len(t, out.chunks, 3)
	assert.Equal(t, "page-0", out.chunks[0].ID, "seed is sequence 0")
	assert.Equal(t, "root page text", out.chunks[0].Contents)
	assert.NotEmpty(t, out.chunks[0].Hash)

	require.Len(t, out.pages, 3)
	assert.Equal(t, "https://example.com/docs/", out.pages[0].URL)
	assert.Equal(t, len("root page text"), out.pages[0].CharCount)

	// Final stats snapshot is persisted.
	require.NotEmpty(t, out.stats)
	assert.Equal(t, *stats, out.stats[len(out.stats)-1])
}

func TestEngine_Run_counts_fetch_failures_and_advances_sequence(t *testing.T) {
	t.Parallel()

	// Only b exists; a 404s but still consumes a sequence id.
	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/b.html": "page b text"},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t,
			"https://example.com/docs/a.html",
			"https://example.com/docs/b.html",
		),
		Fetcher: fetcher,
		Cleaner: cleaner,
		Hasher:  crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:   crawl.NewDedup(),
		Writer:  out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PagesFailed)
	assert.Equal(t, 1, stats.PagesFetched)

	require.Len(t, out.chunks, 1)
	assert.Equal(t, "page-1", out.chunks[0].ID, "failed page keeps its sequence id")
}

func TestEngine_Run_skips_robots_denied_pages(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/a.html": "page a text"},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/a.html"),
		Robots: &mock.RobotsGate{
			AllowedFn: func(ctx context.Context, url string) bool { return false },
		},
		Fetcher: fetcher,
		Cleaner: cleaner,
		Hasher:  crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:   crawl.NewDedup(),
		Writer:  out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PagesSkipped)
	assert.Equal(t, 0, stats.PagesFetched)
	assert.Empty(t, out.chunks)
}

func TestEngine_Run_skips_non_text_responses(t *testing.T) {
	t.Parallel()

	out := &capturingWriter{}
	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/data.txt"),
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) corpuscrawl.FetchResult {
				return corpuscrawl.FetchResult{
					Outcome:     corpuscrawl.FetchNonText,
					Status:      200,
					ContentType: "application/octet-stream",
				}
			},
		},
		Cleaner: &mock.Cleaner{},
		Hasher:  crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:   crawl.NewDedup(),
		Writer:  out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PagesSkipped)
	assert.Empty(t, out.chunks)
}

func TestEngine_Run_skips_pages_below_min_chars_without_following_links(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/a.html": "tiny"},
		map[string][]string{
			"https://example.com/docs/a.html": {"https://example.com/docs/b.html"},
		},
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/a.html"),
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer:   out.writer(),
		MinChars: 100,
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PagesSkipped)
	assert.Equal(t, 0, stats.PagesFetched, "links from skipped pages are not followed")
	assert.Empty(t, out.chunks)
}

func TestEngine_Run_counts_characters_in_runes(t *testing.T) {
	t.Parallel()

	// Ten runes but twenty bytes; a byte-based floor would let this
	// page through MinChars 15.
	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/a.html": "éééééééééé"},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/a.html"),
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer:   out.writer(),
		MinChars: 15,
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PagesSkipped)
	assert.Empty(t, out.chunks)
}

func TestEngine_Run_records_rune_char_counts(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/a.html": "héllo wörld"},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/a.html"),
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer:   out.writer(),
	}

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, out.pages, 1)
	assert.Equal(t, 11, out.pages[0].CharCount, "runes, not bytes")
}

func TestEngine_Run_dedups_identical_content(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{
			"https://example.com/docs/a.html": "identical text",
			"https://example.com/docs/b.html": "identical text",
		},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t,
			"https://example.com/docs/a.html",
			"https://example.com/docs/b.html",
		),
		Fetcher: fetcher,
		Cleaner: cleaner,
		Hasher:  crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:   crawl.NewDedup(),
		Writer:  out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.PagesFetched)
	assert.Equal(t, 1, stats.ChunksWritten)
	assert.Equal(t, 1, stats.ChunksDeduped)

	require.Len(t, out.chunks, 1)
	assert.Equal(t, "https://example.com/docs/a.html", out.chunks[0].URL)
	require.Len(t, out.pages, 1, "fully deduped pages get no manifest row")
}

func TestEngine_Run_url_content_mode_writes_both_copies(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{
			"https://example.com/docs/a.html": "identical text",
			"https://example.com/docs/b.html": "identical text",
		},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t,
			"https://example.com/docs/a.html",
			"https://example.com/docs/b.html",
		),
		Fetcher: fetcher,
		Cleaner: cleaner,
		Hasher:  crawl.NewHasher(corpuscrawl.KeyURLContent),
		Dedup:   crawl.NewDedup(),
		Writer:  out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ChunksWritten)
	assert.Equal(t, 0, stats.ChunksDeduped)
}

func TestEngine_Run_aborts_on_chunk_write_error(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/a.html": "page a text"},
		nil,
	)
	writeErr := errors.New("disk full")

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/a.html"),
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer: &mock.CorpusWriter{
			WriteChunkFn: func(rec *corpuscrawl.ChunkRecord) error { return writeErr },
		},
	}

	stats, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
	require.NotNil(t, stats, "stats reflect progress up to the failure")
}

func TestEngine_Run_continues_on_cleaner_error(t *testing.T) {
	t.Parallel()

	fetcher, _ := site(
		map[string]string{
			"https://example.com/docs/a.html": "a",
			"https://example.com/docs/b.html": "b",
		},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t,
			"https://example.com/docs/a.html",
			"https://example.com/docs/b.html",
		),
		Fetcher: fetcher,
		Cleaner: &mock.Cleaner{
			CleanFn: func(html []byte, pageURL string) (*corpuscrawl.CleanResult, error) {
				if pageURL == "https://example.com/docs/a.html" {
					return nil, errors.New("malformed markup")
				}
				return &corpuscrawl.CleanResult{Text: "page b text"}, nil
			},
		},
		Hasher: crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:  crawl.NewDedup(),
		Writer: out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PagesFailed)
	assert.Equal(t, 1, stats.PagesFetched)
	require.Len(t, out.chunks, 1)
}

func TestEngine_Run_resumes_sequence_ids(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/new.html": "new page text"},
		nil,
	)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier:        seededFrontier(t, "https://example.com/docs/new.html"),
		Fetcher:         fetcher,
		Cleaner:         cleaner,
		Hasher:          crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:           crawl.NewDedup(),
		Writer:          out.writer(),
		FirstSequenceID: 42,
	}

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, out.chunks, 1)
	assert.Equal(t, "page-42", out.chunks[0].ID)
}

func TestEngine_Run_records_visits_and_hashes(t *testing.T) {
	t.Parallel()

	fetcher, cleaner := site(
		map[string]string{"https://example.com/docs/a.html": "page a text"},
		nil,
	)
	out := &capturingWriter{}

	var mu sync.Mutex
	var visits []string
	var hashes []string
	store := &mock.StateStore{
		LoadFn: func(ctx context.Context) (*corpuscrawl.CrawlState, error) {
			return &corpuscrawl.CrawlState{}, nil
		},
		RecordVisitFn: func(ctx context.Context, url string, sequenceID int) error {
			mu.Lock()
			defer mu.Unlock()
			visits = append(visits, fmt.Sprintf("%s@%d", url, sequenceID))
			return nil
		},
		RecordHashFn: func(ctx context.Context, digest string) error {
			mu.Lock()
			defer mu.Unlock()
			hashes = append(hashes, digest)
			return nil
		},
	}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, "https://example.com/docs/a.html"),
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer:   out.writer(),
		State:    store,
	}

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/docs/a.html@0"}, visits)
	require.Len(t, hashes, 1)
	assert.Equal(t, out.chunks[0].Hash, hashes[0])
}

func TestEngine_Run_with_concurrent_workers(t *testing.T) {
	t.Parallel()

	pages := make(map[string]string)
	var seeds []string
	for i := 0; i < 40; i++ {
		url := fmt.Sprintf("https://example.com/docs/p%d.html", i)
		pages[url] = fmt.Sprintf("text of page %d", i)
		seeds = append(seeds, url)
	}
	fetcher, cleaner := site(pages, nil)
	out := &capturingWriter{}

	engine := &crawl.Engine{
		Frontier: seededFrontier(t, seeds...),
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer:   out.writer(),
		Workers:  4,
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 40, stats.PagesFetched)
	assert.Equal(t, 40, stats.ChunksWritten)
	assert.Len(t, out.chunks, 40)

	// Every sequence id appears exactly once.
	seen := make(map[string]bool)
	for _, c := range out.chunks {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestEngine_Run_respects_max_pages(t *testing.T) {
	t.Parallel()

	pages := make(map[string]string)
	var seeds []string
	for i := 0; i < 10; i++ {
		url := fmt.Sprintf("https://example.com/docs/p%d.html", i)
		pages[url] = fmt.Sprintf("text of page %d", i)
		seeds = append(seeds, url)
	}
	fetcher, cleaner := site(pages, nil)
	out := &capturingWriter{}

	frontier, err := crawl.NewFrontier(crawl.FrontierConfig{
		BaseURL:  "https://example.com/docs/",
		MaxPages: 3,
	})
	require.NoError(t, err)
	frontier.Seed(seeds)

	engine := &crawl.Engine{
		Frontier: frontier,
		Fetcher:  fetcher,
		Cleaner:  cleaner,
		Hasher:   crawl.NewHasher(corpuscrawl.KeyContent),
		Dedup:    crawl.NewDedup(),
		Writer:   out.writer(),
	}

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.PagesFetched)
	assert.Len(t, out.chunks, 3)
}
