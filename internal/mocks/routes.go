package mocks

import (
	"context"
	"math/big"
	"sync"
	"time"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

// seedPool is the teacher's MockPoolCollector seed shape generalized to a
// tagged types.Pool: one V2 constant-product pool per major pair, per
// exchange, matching internal/collector/pool_collector.go's InitMockPools
// reserve values (1 ETH-equivalent / 2000 USD-equivalent).
func seedPools() []*types.Pool {
	return []*types.Pool{
		{Protocol: types.ProtocolV2, Address: "0xpool-uniswapv2-weth-usdt", Token0: seedTokens[weth], Token1: seedTokens[usdt],
			Reserve0: big.NewInt(1_000_000_000_000_000_000), Reserve1: big.NewInt(2_000_000_000)},
		{Protocol: types.ProtocolV2, Address: "0xpool-sushiswap-weth-usdt", Token0: seedTokens[weth], Token1: seedTokens[usdt],
			Reserve0: big.NewInt(800_000_000_000_000_000), Reserve1: big.NewInt(1_590_000_000)},
		{Protocol: types.ProtocolV2, Address: "0xpool-uniswapv2-weth-usdc", Token0: seedTokens[weth], Token1: seedTokens[usdc],
			Reserve0: big.NewInt(1_000_000_000_000_000_000), Reserve1: big.NewInt(2_000_000_000)},
		{Protocol: types.ProtocolV2, Address: "0xpool-uniswapv2-weth-dai", Token0: seedTokens[weth], Token1: seedTokens[dai],
			Reserve0: big.NewInt(1_000_000_000_000_000_000), Reserve1: new(big.Int).Mul(big.NewInt(2000), tenPow18)},
		{Protocol: types.ProtocolV2, Address: "0xpool-uniswapv2-usdc-usdt", Token0: seedTokens[usdc], Token1: seedTokens[usdt],
			Reserve0: big.NewInt(1_000_000_000), Reserve1: big.NewInt(1_000_000_000)},
		// A V4 pool sharing the WETH/USDC pair, so multi-protocol routes and
		// the ProtocolMixed tag have something to exercise.
		{Protocol: types.ProtocolV4, Address: "0xpool-v4-weth-usdc", PoolID: "v4-weth-usdc", Token0: seedTokens[weth], Token1: seedTokens[usdc],
			Liquidity: big.NewInt(5_000_000_000_000_000_000), SqrtPriceX96: big.NewInt(1 << 32), TickCurrent: 0, TickSpacing: 60, Fee: 500},
	}
}

var tenPow18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Routes is the ports.RoutesRepository demo implementation: a fixed pool
// set (§ above), adjacency-indexed the way the teacher's PathFinder keeps
// an in-memory adj/poolMap built from RefreshGraph, searched by a bounded
// depth-first walk up to types.MaxHops since the seed graph is tiny.
type Routes struct {
	mu    sync.RWMutex
	pools []*types.Pool
	adj   map[types.Address][]*types.Pool
}

// NewRoutes builds the demo route graph and starts the teacher's periodic
// refresh idiom (runGraphRefresher), even though this demo graph never
// actually changes — kept so the concurrency shape (a ticker-driven
// rebuild) is exercised the way the teacher's PathFinder exercises it.
func NewRoutes() *Routes {
	r := &Routes{pools: seedPools()}
	r.rebuildAdjacency()
	go r.runRefresher(context.Background(), 30*time.Second)
	return r
}

func (r *Routes) rebuildAdjacency() {
	r.mu.Lock()
	defer r.mu.Unlock()
	adj := make(map[types.Address][]*types.Pool)
	for _, p := range r.pools {
		adj[p.Token0.Address] = append(adj[p.Token0.Address], p)
		adj[p.Token1.Address] = append(adj[p.Token1.Address], p)
	}
	r.adj = adj
}

func (r *Routes) runRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.rebuildAdjacency()
		case <-ctx.Done():
			return
		}
	}
}

// GetRoutes returns every simple path from in to out up to types.MaxHops,
// filtered by protocols when provided (§6 RoutesRepository.GetRoutes). hooks
// and skipPoolsForTokensCache are accepted for interface compliance; this
// demo graph has no V4 hook-gated pools to filter beyond the fake-tick-
// spacing sentinel, which never appears in the seed set.
func (r *Routes) GetRoutes(ctx context.Context, chainID int64, in, out types.Address, protocols []types.Protocol, tradeType types.TradeType, hooks types.HooksOptions, skipPoolsForTokensCache bool) ([]*types.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := r.findPaths(in, out, types.MaxHops)
	allowed := protocolSet(protocols)

	routes := make([]*types.Route, 0, len(paths))
	for _, path := range paths {
		if len(allowed) > 0 && !pathMatchesProtocols(path, allowed) {
			continue
		}
		routes = append(routes, types.NewRoute(path, 100))
	}
	return routes, nil
}

// FetchRoutesForTokens discovers every route reachable between in and out
// by calling GetRoutes with no protocol filter.
func (r *Routes) FetchRoutesForTokens(ctx context.Context, chainID int64, in, out types.Address) ([]*types.Route, error) {
	return r.GetRoutes(ctx, chainID, in, out, nil, types.ExactIn, types.HooksInclusive, false)
}

// findPaths is a bounded DFS over the pool adjacency graph (teacher's
// PathFinder kept a similar adj map; this demo graph is small enough that
// a plain depth-first walk replaces the teacher's heap-based search, which
// belongs to the real path-finder, not this fixture).
func (r *Routes) findPaths(in, out types.Address, maxHops int) [][]*types.Pool {
	var results [][]*types.Pool
	visited := map[string]bool{}
	var walk func(cur types.Address, path []*types.Pool)
	walk = func(cur types.Address, path []*types.Pool) {
		if len(path) > 0 && cur.Equal(out) {
			cp := make([]*types.Pool, len(path))
			copy(cp, path)
			results = append(results, cp)
			return
		}
		if len(path) >= maxHops {
			return
		}
		for _, pool := range r.adj[cur] {
			key := pool.IdentityKey()
			if visited[key] {
				continue
			}
			next, ok := pool.OtherToken(cur)
			if !ok {
				continue
			}
			visited[key] = true
			walk(next.Address, append(path, pool))
			visited[key] = false
		}
	}
	walk(in, nil)
	return results
}

func protocolSet(protocols []types.Protocol) map[types.Protocol]bool {
	set := make(map[types.Protocol]bool, len(protocols))
	for _, p := range protocols {
		set[p] = true
	}
	return set
}

func pathMatchesProtocols(path []*types.Pool, allowed map[types.Protocol]bool) bool {
	for _, p := range path {
		if allowed[p.Protocol] {
			return true
		}
	}
	return false
}

var _ ports.RoutesRepository = (*Routes)(nil)
