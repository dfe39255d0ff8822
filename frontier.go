package corpuscrawl

// PendingURL is a URL waiting in the frontier queue. Created by seeding
// or link discovery, consumed exactly once by Pop, never mutated.
type PendingURL struct {
	URL   string
	Depth int
}

// Frontier owns the pending-URL queue, the visited set, and URL
// admission filtering. Implementations must be safe for concurrent use.
type Frontier interface {
	// Seed adds starting URLs at depth 0, respecting admission rules.
	Seed(urls []string)

	// Offer normalizes a discovered link and enqueues it at depth
	// fromDepth+1 if it passes admission (scheme, host scope, regex
	// filters, not visited, not pending). Returns false if rejected.
	Offer(rawURL string, fromDepth int) bool

	// Pop removes and returns the next URL in FIFO order. Returns
	// false if the queue is empty or the max-pages pop cap is reached.
	Pop() (PendingURL, bool)

	// MarkVisited moves a URL into the visited set. Called at pop
	// time, so a URL that fails downstream is never re-enqueued.
	MarkVisited(url string)

	// Len returns the number of pending URLs.
	Len() int

	// QueuePeek returns the high-water mark of the pending queue size,
	// checked at every mutation. Monotonically non-decreasing.
	QueuePeek() int
}
