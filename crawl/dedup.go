package crawl

import (
	"sync"

	"github.com/corpuscrawl/corpuscrawl"
)

var _ corpuscrawl.Deduplicator = (*Dedup)(nil)

// Dedup is an exact in-memory index of content digests already written.
// Exactness matters: a probabilistic filter's false positive would
// silently drop a unique chunk. Digests are never removed within a run.
// Safe for concurrent use.
type Dedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedup creates an empty dedup index.
func NewDedup() *Dedup {
	return &Dedup{seen: make(map[string]struct{})}
}

// Restore preloads digests from persisted state on resume.
func (d *Dedup) Restore(digests []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range digests {
		d.seen[h] = struct{}{}
	}
}

// ShouldWrite reports whether a digest is new, recording it as seen in
// the same critical section. The check-and-insert is a single atomic
// decision point per chunk.
func (d *Dedup) ShouldWrite(digest string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[digest]; ok {
		return false
	}
	d.seen[digest] = struct{}{}
	return true
}

// Len returns the number of recorded digests.
func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
