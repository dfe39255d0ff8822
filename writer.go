package corpuscrawl

// CorpusWriter appends chunk records and manifest rows to the output
// corpus and persists stats snapshots. All corpus writes are
// append-only; implementations must serialize their own mutations so
// every append is a complete line. Write errors are fatal to the run:
// they invalidate the durability contract.
type CorpusWriter interface {
	// WriteChunk appends one line to each configured output stream.
	WriteChunk(rec *ChunkRecord) error

	// WritePage appends the page's manifest row. Called once per page,
	// after the page has contributed at least one written chunk.
	WritePage(page *PageRecord) error

	// WriteStats atomically replaces the persisted stats snapshot.
	// Called on heartbeats and on finalize.
	WriteStats(stats *Stats) error

	// Close flushes and closes the output files.
	Close() error
}
