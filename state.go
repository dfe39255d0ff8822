package corpuscrawl

import "context"

// CrawlState is the persisted crawl progress restored when resuming.
type CrawlState struct {
	// Visited holds the normalized URLs already popped in prior runs.
	Visited []string

	// Hashes holds the content digests already durably written.
	Hashes []string

	// NextSequenceID is the first page counter value to assign.
	NextSequenceID int
}

// StateStore reconstructs and records crawl state for resume. The
// external contract is the only requirement: after a resume, no
// already-visited URL is re-fetched and no already-written hash is
// re-written. How state is persisted (re-scanning prior output or a
// dedicated store) is up to the implementation.
type StateStore interface {
	// Load returns the prior state, or an empty state if none exists.
	Load(ctx context.Context) (*CrawlState, error)

	// RecordVisit durably notes that a URL was popped with the given
	// sequence id. May be a no-op when visits are derivable from the
	// corpus output itself.
	RecordVisit(ctx context.Context, url string, sequenceID int) error

	// RecordHash durably notes a written content digest. May be a
	// no-op when hashes are derivable from the corpus output itself.
	RecordHash(ctx context.Context, digest string) error

	// Close releases store resources.
	Close() error
}
