package corpuscrawl

import "time"

// Stats holds the running counters for a crawl. All counters are
// monotonically non-decreasing within a run. ChunksWritten counts
// chunks actually appended; ChunksDeduped counts duplicates that were
// suppressed; their sum is the number of candidate chunks generated.
type Stats struct {
	RunID      string    `json:"run_id,omitempty"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`

	PagesFetched  int `json:"pages_fetched"`
	PagesSkipped  int `json:"pages_skipped"`
	PagesFailed   int `json:"pages_failed"`
	ChunksWritten int `json:"chunks_written"`
	ChunksDeduped int `json:"chunks_deduped"`
	QueuePeek     int `json:"queue_peek"`
}
