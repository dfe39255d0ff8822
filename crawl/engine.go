// Package crawl provides the crawl-and-corpus-build orchestration:
// frontier management, per-page pipeline execution, deduplication,
// and running statistics.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Engine drives the main crawl loop: pop from the frontier, robots
// check, fetch, clean, chunk, dedup, write, offer discovered links
// back to the frontier. Page failures update counters and never abort
// the run; only output durability errors are fatal.
type Engine struct {
	Frontier corpuscrawl.Frontier
	Robots   corpuscrawl.RobotsGate
	Fetcher  corpuscrawl.Fetcher
	Cleaner  corpuscrawl.Cleaner
	Hasher   corpuscrawl.Hasher
	Dedup    corpuscrawl.Deduplicator
	Writer   corpuscrawl.CorpusWriter

	// State, if set, receives durable visit/hash notifications as the
	// crawl proceeds.
	State corpuscrawl.StateStore

	Logger *slog.Logger

	ChunkSize    int
	ChunkOverlap int
	MinChars     int

	// HeartbeatEvery emits a stats snapshot every N pops. Values <= 0
	// default to corpuscrawl.DefaultHeartbeatEvery.
	HeartbeatEvery int

	// Workers bounds the per-URL pipeline pool. Values <= 1 run the
	// sequential loop; the frontier, dedup index, and writer each
	// serialize their own mutations, so one worker owns a whole page
	// and chunk_index order within a page is always increasing.
	Workers int

	// RunID identifies the run in stats and heartbeats. Generated if
	// empty.
	RunID string

	// FirstSequenceID is the initial page counter value, restored
	// from state on resume.
	FirstSequenceID int

	mu    sync.Mutex
	stats corpuscrawl.Stats
	seq   int
	pops  int
}

// Run executes the crawl until the frontier is exhausted, the max-pages
// cap drains the queue, or the context is canceled. It finalizes the
// stats snapshot before returning. The returned stats are valid even
// when err is non-nil, reflecting progress up to the fatal error.
func (e *Engine) Run(ctx context.Context) (*corpuscrawl.Stats, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if e.RunID == "" {
		e.RunID = uuid.NewString()
	}
	heartbeat := e.HeartbeatEvery
	if heartbeat <= 0 {
		heartbeat = corpuscrawl.DefaultHeartbeatEvery
	}
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	e.seq = e.FirstSequenceID
	e.stats = corpuscrawl.Stats{RunID: e.RunID, StartedAt: time.Now().UTC()}

	logger.Info("crawl started", "run_id", e.RunID, "workers", workers)

	// Workers drain the frontier in rounds: when the queue looks
	// empty, in-flight pages may still discover links, so the round
	// ends, Wait settles the pool, and the next round re-checks.
	for ctx.Err() == nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		dispatched := 0
		var popErr error
		for gctx.Err() == nil {
			pending, ok := e.Frontier.Pop()
			if !ok {
				break
			}
			seq := e.nextSequenceID()
			e.Frontier.MarkVisited(pending.URL)
			if e.State != nil {
				if err := e.State.RecordVisit(gctx, pending.URL, seq); err != nil {
					popErr = fmt.Errorf("recording visit for %s: %w", pending.URL, err)
					break
				}
			}
			if err := e.tickHeartbeat(heartbeat, logger); err != nil {
				popErr = err
				break
			}

			dispatched++
			g.Go(func() error {
				return e.processPage(gctx, pending, seq, logger)
			})
		}

		err := g.Wait()
		if popErr != nil {
			return e.snapshot(), popErr
		}
		if err != nil {
			return e.snapshot(), err
		}
		if dispatched == 0 {
			break
		}
	}

	e.mu.Lock()
	e.stats.FinishedAt = time.Now().UTC()
	e.mu.Unlock()

	final := e.snapshot()
	if err := e.Writer.WriteStats(final); err != nil {
		return final, fmt.Errorf("finalizing stats: %w", err)
	}

	logger.Info("crawl finished",
		"run_id", e.RunID,
		"pages_fetched", final.PagesFetched,
		"pages_skipped", final.PagesSkipped,
		"pages_failed", final.PagesFailed,
		"chunks_written", final.ChunksWritten,
		"chunks_deduped", final.ChunksDeduped,
		"queue_peek", final.QueuePeek,
	)
	return final, nil
}

// processPage runs one URL through the full pipeline. Returned errors
// are fatal output failures; page-level problems only move counters.
func (e *Engine) processPage(ctx context.Context, pending corpuscrawl.PendingURL, seq int, logger *slog.Logger) error {
	if e.Robots != nil && !e.Robots.Allowed(ctx, pending.URL) {
		e.bump(func(s *corpuscrawl.Stats) { s.PagesSkipped++ })
		logger.Info("robots denied", "url", pending.URL)
		return nil
	}

	res := e.Fetcher.Fetch(ctx, pending.URL)
	switch res.Outcome {
	case corpuscrawl.FetchOK:
	case corpuscrawl.FetchNonText:
		e.bump(func(s *corpuscrawl.Stats) { s.PagesSkipped++ })
		logger.Debug("skipped", "url", pending.URL, "reason", res.Reason())
		return nil
	default:
		e.bump(func(s *corpuscrawl.Stats) { s.PagesFailed++ })
		logger.Warn("fetch failed", "url", pending.URL, "reason", res.Reason())
		return nil
	}

	cleaned, err := e.Cleaner.Clean(res.Body, pending.URL)
	if err != nil {
		e.bump(func(s *corpuscrawl.Stats) { s.PagesFailed++ })
		logger.Warn("clean failed", "url", pending.URL, "error", err)
		return nil
	}

	// Characters are counted in runes, matching the chunker's window
	// arithmetic, so the min-chars floor behaves the same for
	// multibyte text.
	chars := utf8.RuneCountInString(cleaned.Text)
	if cleaned.Text == "" || (e.MinChars > 0 && chars < e.MinChars) {
		e.bump(func(s *corpuscrawl.Stats) { s.PagesSkipped++ })
		logger.Debug("skipped", "url", pending.URL, "reason", "below min chars", "chars", chars)
		return nil
	}

	page := &corpuscrawl.PageRecord{
		SequenceID: seq,
		URL:        pending.URL,
		Title:      cleaned.Title,
		Text:       cleaned.Text,
		CharCount:  chars,
		HTML:       res.Body,
	}
	e.bump(func(s *corpuscrawl.Stats) { s.PagesFetched++ })

	chunks := corpuscrawl.BuildChunks(page, e.ChunkSize, e.ChunkOverlap)
	wrote := 0
	for i := range chunks {
		chunk := &chunks[i]
		chunk.Hash = e.Hasher.Fingerprint(page.URL, chunk.Contents)

		if !e.Dedup.ShouldWrite(chunk.Hash) {
			e.bump(func(s *corpuscrawl.Stats) { s.ChunksDeduped++ })
			continue
		}
		if err := e.Writer.WriteChunk(chunk); err != nil {
			return fmt.Errorf("writing chunk %s: %w", chunk.ID, err)
		}
		if e.State != nil {
			if err := e.State.RecordHash(ctx, chunk.Hash); err != nil {
				return fmt.Errorf("recording hash for %s: %w", chunk.ID, err)
			}
		}
		wrote++
		e.bump(func(s *corpuscrawl.Stats) { s.ChunksWritten++ })
	}

	if wrote > 0 {
		if err := e.Writer.WritePage(page); err != nil {
			return fmt.Errorf("writing manifest row for %s: %w", page.URL, err)
		}
	}

	for _, link := range cleaned.Links {
		e.Frontier.Offer(link, pending.Depth)
	}

	logger.Info("page processed",
		"url", pending.URL,
		"seq", seq,
		"chunks", len(chunks),
		"written", wrote,
		"queue", e.Frontier.Len(),
	)
	return nil
}

// nextSequenceID assigns the page counter at pop time. IDs advance for
// every pop, including pages that later skip or fail.
func (e *Engine) nextSequenceID() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq := e.seq
	e.seq++
	return seq
}

// tickHeartbeat counts a pop and, every N pops, persists and logs a
// stats snapshot. Heartbeat lines are progress reports, not part of
// the durable contract; the snapshot write is.
func (e *Engine) tickHeartbeat(every int, logger *slog.Logger) error {
	e.mu.Lock()
	e.pops++
	due := e.pops%every == 0
	e.mu.Unlock()

	if !due {
		return nil
	}

	snap := e.snapshot()
	if err := e.Writer.WriteStats(snap); err != nil {
		return fmt.Errorf("writing heartbeat stats: %w", err)
	}
	logger.Info("heartbeat",
		"run_id", e.RunID,
		"pages_fetched", snap.PagesFetched,
		"pages_skipped", snap.PagesSkipped,
		"pages_failed", snap.PagesFailed,
		"chunks_written", snap.ChunksWritten,
		"chunks_deduped", snap.ChunksDeduped,
		"queue", e.Frontier.Len(),
	)
	return nil
}

func (e *Engine) bump(update func(*corpuscrawl.Stats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	update(&e.stats)
}

// snapshot copies the counters and samples the frontier's high-water
// mark so QueuePeek is monotone across snapshots.
func (e *Engine) snapshot() *corpuscrawl.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.stats
	snap.QueuePeek = e.Frontier.QueuePeek()
	return &snap
}
