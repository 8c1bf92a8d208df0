// Package aggregator implements the route-percentage allocator (§4.3), the
// quote selector (§4.4) and the best-split finder (§4.5) — the math that
// sits between "candidate routes" and "a ranked list of QuoteSplits."
package aggregator

import (
	"dex-aggregator/internal/types"
)

// ExpandRoutePercentages emits copies of each candidate route at every
// percentage from 100 down to step, in steps of step (§4.3). The teacher's
// route representation ([]*types.Pool per path) is reused unchanged; only
// the percentage tag varies across copies, so every copy shares the same
// underlying pool slice.
func ExpandRoutePercentages(routes []*types.Route, step int) []*types.Route {
	if step <= 0 {
		step = 5
	}
	out := make([]*types.Route, 0, len(routes)*(100/step))
	for _, r := range routes {
		for pct := 100; pct >= step; pct -= step {
			out = append(out, r.WithPercentage(pct))
		}
	}
	return out
}
