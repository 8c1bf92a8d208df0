package mocks

import (
	"context"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

// PoolDetails is the ports.FreshPoolDetailsWrapper demo implementation: the
// seed graph's reserves never move between a route being discovered and
// the response being built, so refreshing just returns the same pools
// looked up by identity key — still exercising the real refresh call site
// in internal/orchestrator rather than leaving it unwired.
type PoolDetails struct {
	routes *Routes
}

func NewPoolDetails(routes *Routes) *PoolDetails {
	return &PoolDetails{routes: routes}
}

func (p *PoolDetails) GetPoolDetailsForRoute(ctx context.Context, chainID int64, quotes []*types.QuoteBasic) (map[string]*types.Pool, error) {
	out := make(map[string]*types.Pool)
	p.routes.mu.RLock()
	defer p.routes.mu.RUnlock()
	for _, q := range quotes {
		if q.Route == nil {
			continue
		}
		for _, pool := range q.Route.Path {
			for _, candidate := range p.routes.pools {
				if candidate.IdentityKey() == pool.IdentityKey() {
					out[pool.IdentityKey()] = candidate
					break
				}
			}
		}
	}
	return out, nil
}

func (p *PoolDetails) GetPoolsDetails(ctx context.Context, chainID int64, pools []*types.Pool) (map[string]*types.Pool, error) {
	out := make(map[string]*types.Pool)
	p.routes.mu.RLock()
	defer p.routes.mu.RUnlock()
	for _, pool := range pools {
		for _, candidate := range p.routes.pools {
			if candidate.IdentityKey() == pool.IdentityKey() {
				out[pool.IdentityKey()] = candidate
				break
			}
		}
	}
	return out, nil
}

var _ ports.FreshPoolDetailsWrapper = (*PoolDetails)(nil)
