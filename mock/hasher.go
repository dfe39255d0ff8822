package mock

import "github.com/corpuscrawl/corpuscrawl"

var _ corpuscrawl.Hasher = (*Hasher)(nil)

// Hasher is a mock implementation of corpuscrawl.Hasher.
type Hasher struct {
	FingerprintFn func(url, text string) string
}

func (h *Hasher) Fingerprint(url, text string) string {
	return h.FingerprintFn(url, text)
}

var _ corpuscrawl.Deduplicator = (*Deduplicator)(nil)

// Deduplicator is a mock implementation of corpuscrawl.Deduplicator.
type Deduplicator struct {
	ShouldWriteFn func(digest string) bool
}

func (d *Deduplicator) ShouldWrite(digest string) bool {
	return d.ShouldWriteFn(digest)
}
