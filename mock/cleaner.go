package mock

import "github.com/corpuscrawl/corpuscrawl"

var _ corpuscrawl.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of corpuscrawl.Cleaner.
type Cleaner struct {
	CleanFn func(html []byte, pageURL string) (*corpuscrawl.CleanResult, error)
}

func (c *Cleaner) Clean(html []byte, pageURL string) (*corpuscrawl.CleanResult, error) {
	return c.CleanFn(html, pageURL)
}
