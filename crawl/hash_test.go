package crawl_test

import (
	"regexp"
	"testing"

	"github.com/corpuscrawl/corpuscrawl"
	"github.com/corpuscrawl/corpuscrawl/crawl"
	"github.com/stretchr/testify/assert"
)

var hexDigestRE = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestHasher_content_mode_ignores_URL(t *testing.T) {
	t.Parallel()

	h := crawl.NewHasher(corpuscrawl.KeyContent)

	a := h.Fingerprint("https://example.com/docs/a", "same text")
	b := h.Fingerprint("https://example.com/docs/b", "same text")

	assert.Equal(t, a, b, "identical content on different URLs is a duplicate")
	assert.Regexp(t, hexDigestRE, a)
}

func TestHasher_url_content_mode_distinguishes_URLs(t *testing.T) {
	t.Parallel()

	h := crawl.NewHasher(corpuscrawl.KeyURLContent)

	a := h.Fingerprint("https://example.com/docs/a", "same text")
	b := h.Fingerprint("https://example.com/docs/b", "same text")

	assert.NotEqual(t, a, b, "same content on different URLs is distinct")
	assert.Regexp(t, hexDigestRE, a)
	assert.Regexp(t, hexDigestRE, b)
}

func TestHasher_is_deterministic(t *testing.T) {
	t.Parallel()

	h := crawl.NewHasher(corpuscrawl.KeyContent)

	assert.Equal(t,
		h.Fingerprint("https://example.com/", "text"),
		h.Fingerprint("https://example.com/", "text"),
	)
	assert.NotEqual(t,
		h.Fingerprint("https://example.com/", "text"),
		h.Fingerprint("https://example.com/", "other text"),
	)
}
