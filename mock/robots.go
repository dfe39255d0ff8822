package mock

import (
	"context"

	"github.com/corpuscrawl/corpuscrawl"
)

var _ corpuscrawl.RobotsGate = (*RobotsGate)(nil)

// RobotsGate is a mock implementation of corpuscrawl.RobotsGate.
type RobotsGate struct {
	AllowedFn func(ctx context.Context, url string) bool
}

func (g *RobotsGate) Allowed(ctx context.Context, url string) bool {
	if g.AllowedFn == nil {
		return true
	}
	return g.AllowedFn(ctx, url)
}
