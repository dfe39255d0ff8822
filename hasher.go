package corpuscrawl

// KeyMode selects what is hashed to decide duplicate status. Modes are
// never mixed within a run.
type KeyMode string

// Dedup key modes.
const (
	// KeyContent hashes the chunk text alone: identical content on
	// different URLs is a duplicate.
	KeyContent KeyMode = "content"

	// KeyURLContent qualifies the hash with the URL: identical content
	// on different URLs is written for both.
	KeyURLContent KeyMode = "url+content"
)

// ParseKeyMode validates a key mode string from configuration.
func ParseKeyMode(s string) (KeyMode, error) {
	switch KeyMode(s) {
	case KeyContent, KeyURLContent:
		return KeyMode(s), nil
	default:
		return "", Errorf(EINVALID, "unknown dedup key mode %q", s)
	}
}

// Hasher computes a stable content fingerprint for dedup keys.
// Implementations must use a cryptographic hash: dedup correctness
// depends on effectively-zero accidental collisions.
type Hasher interface {
	Fingerprint(url, text string) string
}

// Deduplicator decides write/skip per chunk digest. ShouldWrite is an
// atomic check-and-insert: no digest is ever accepted twice, even when
// two chunks are processed concurrently.
type Deduplicator interface {
	ShouldWrite(digest string) bool
}
