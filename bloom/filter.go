// Package bloom provides probabilistic URL membership tracking for
// frontier admission. A false positive drops a URL from a best-effort
// crawl; a false negative never happens, so duplicate suppression is
// always safe.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter keyed by URL.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected URLs with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add records a URL.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Contains returns true if the URL might have been added. False
// positives are possible; false negatives are not.
func (f *Filter) Contains(url string) bool {
	return f.f.TestString(url)
}
