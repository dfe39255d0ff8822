package crawl

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/corpuscrawl/corpuscrawl"
)

var _ corpuscrawl.Hasher = (*Hasher)(nil)

// Hasher computes SHA-256 fingerprints over the configured dedup key.
// A cryptographic hash keeps accidental collisions effectively at
// zero, which exact-duplicate detection depends on.
type Hasher struct {
	mode corpuscrawl.KeyMode
}

// NewHasher creates a Hasher for the given key mode. An empty mode
// defaults to content-only keys.
func NewHasher(mode corpuscrawl.KeyMode) *Hasher {
	if mode == "" {
		mode = corpuscrawl.KeyContent
	}
	return &Hasher{mode: mode}
}

// Fingerprint returns the hex digest of the dedup key for a chunk.
func (h *Hasher) Fingerprint(url, text string) string {
	var sum [32]byte
	if h.mode == corpuscrawl.KeyURLContent {
		sum = sha256.Sum256([]byte(url + "\n" + text))
	} else {
		sum = sha256.Sum256([]byte(text))
	}
	return hex.EncodeToString(sum[:])
}
