package mock

import "github.com/corpuscrawl/corpuscrawl"

var _ corpuscrawl.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of corpuscrawl.Frontier.
type Frontier struct {
	SeedFn        func(urls []string)
	OfferFn       func(rawURL string, fromDepth int) bool
	PopFn         func() (corpuscrawl.PendingURL, bool)
	MarkVisitedFn func(url string)
	LenFn         func() int
	QueuePeekFn   func() int
}

func (f *Frontier) Seed(urls []string) {
	f.SeedFn(urls)
}

func (f *Frontier) Offer(rawURL string, fromDepth int) bool {
	return f.OfferFn(rawURL, fromDepth)
}

func (f *Frontier) Pop() (corpuscrawl.PendingURL, bool) {
	return f.PopFn()
}

func (f *Frontier) MarkVisited(url string) {
	if f.MarkVisitedFn != nil {
		f.MarkVisitedFn(url)
	}
}

func (f *Frontier) Len() int {
	return f.LenFn()
}

func (f *Frontier) QueuePeek() int {
	if f.QueuePeekFn == nil {
		return 0
	}
	return f.QueuePeekFn()
}
