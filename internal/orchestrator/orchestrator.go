// Package orchestrator wires every stage of §4.1's Pipeline.Quote: request
// validation, currency resolution, route discovery (live + cache), the
// allocator/gas/splitfinder/selector chain, simulation, response assembly
// and the §4.8 caching policy. It is the generalized form of the teacher's
// Router.GetBestQuote, which runs the same stage sequence — log request,
// fetch candidates, compute concurrently, pick best, build response, log
// timing — for a single best path instead of a ranked multi-route split.
package orchestrator

import (
	"context"
	"math/big"
	"strings"
	"time"

	"dex-aggregator/internal/aggregator"
	"dex-aggregator/internal/cache"
	"dex-aggregator/internal/gas"
	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/respond"
	"dex-aggregator/internal/simulate"
	"dex-aggregator/internal/types"
	"dex-aggregator/internal/validate"
)

// Config carries the routing engine's own knobs (§9), beyond what any one
// collaborator needs.
type Config struct {
	PercentageStep     int
	SplitConfig        aggregator.SplitConfig
	TopNCandidates     int
	MaxRoutesPerBucket int64
	TopNFromCache      int64
	SimulationEnabled  bool
	GasConcurrency     int
}

// Pipeline bundles every collaborator the spec calls out in §6 behind the
// ports interfaces, plus the engine's own stateless math packages.
type Pipeline struct {
	cfg Config

	validator *validate.Validator
	tokens    ports.TokenProvider
	chains    ports.ChainRepository
	routes    ports.RoutesRepository
	cached    ports.CachedRoutesRepository
	fetcher   ports.QuoteFetcher
	gasAtt    *gas.Attacher
	sim       *simulate.Loop
	fresh     ports.FreshPoolDetailsWrapper
}

// New builds a Pipeline. fresh and cached may be nil — a nil fresh skips
// the post-selection pool refresh (§4.1 step 7 becomes a no-op), a nil
// cached skips reading and writing the route cache entirely.
func New(
	cfg Config,
	validator *validate.Validator,
	tokens ports.TokenProvider,
	chains ports.ChainRepository,
	routes ports.RoutesRepository,
	cached ports.CachedRoutesRepository,
	fetcher ports.QuoteFetcher,
	gasProvider ports.GasEstimateProvider,
	gasConverter ports.GasConverter,
	simulator ports.Simulator,
	fresh ports.FreshPoolDetailsWrapper,
) *Pipeline {
	if cfg.GasConcurrency <= 0 {
		cfg.GasConcurrency = 8
	}
	if cfg.TopNCandidates <= 0 {
		cfg.TopNCandidates = 3
	}
	return &Pipeline{
		cfg:       cfg,
		validator: validator,
		tokens:    tokens,
		chains:    chains,
		routes:    routes,
		cached:    cached,
		fetcher:   fetcher,
		gasAtt:    gas.New(gasProvider, gasConverter, cfg.GasConcurrency),
		sim:       simulate.New(simulator),
		fresh:     fresh,
	}
}

// Quote runs the full §4.1 pipeline for one request.
func (p *Pipeline) Quote(ctx context.Context, rc ports.RequestContext, req *types.QuoteRequest) *types.QuoteResponse {
	log := rc.Logger().WithField("tokenIn", req.TokenInAddress).WithField("tokenOut", req.TokenOutAddress)
	stop := rc.Metrics().Timer("quote.total")
	defer stop()

	if resp := p.validator.Validate(req); resp != nil {
		rc.Metrics().Count("quote.rejected", "validation")
		return resp
	}

	inToken, inCurrency, err := p.tokens.SearchForToken(ctx, req.TokenInChainID, req.TokenInAddress)
	if err != nil {
		log.Errorf("resolve tokenIn: %v", err)
		return types.NewErrorResponse(500, "failed to resolve input token")
	}
	outToken, outCurrency, err := p.tokens.SearchForToken(ctx, req.TokenOutChainID, req.TokenOutAddress)
	if err != nil {
		log.Errorf("resolve tokenOut: %v", err)
		return types.NewErrorResponse(500, "failed to resolve output token")
	}

	inWrapped, outWrapped := inToken.Address, outToken.Address
	if inCurrency != nil && inCurrency.IsNative {
		inWrapped = inCurrency.WrappedAddress
	}
	if outCurrency != nil && outCurrency.IsNative {
		outWrapped = outCurrency.WrappedAddress
	}
	if resp := validate.ValidateWrappedCollision(inWrapped, outWrapped); resp != nil {
		return resp
	}

	chain, err := p.chains.GetChain(ctx, req.TokenInChainID)
	if err != nil {
		log.Errorf("resolve chain: %v", err)
		return types.NewErrorResponse(500, "failed to resolve chain metadata")
	}

	skipTokensCache := req.EffectiveHooks().SkipPoolsForTokensCache()
	protocols := parseProtocols(req.Protocols)

	liveRoutes, err := p.routes.GetRoutes(ctx, chain.ID, inWrapped, outWrapped, protocols, req.TradeType, req.EffectiveHooks(), skipTokensCache)
	if err != nil {
		log.Errorf("fetch routes: %v", err)
		return types.NewErrorResponse(500, "failed to discover routes")
	}

	cachedKeys, cachedRoutes := p.readCachedRoutes(ctx, chain.ID, inWrapped, outWrapped, req)
	candidates := mergeRoutes(liveRoutes, cachedRoutes)
	if len(candidates) == 0 {
		rc.Metrics().Count("quote.no_route")
		return types.NewErrorResponse(404, "No valid quotes found")
	}

	expanded := aggregator.ExpandRoutePercentages(candidates, p.cfg.PercentageStep)

	quotes, err := p.fetcher.FetchQuotes(ctx, chain.ID, inToken, outToken, req.Amount, expanded, req.TradeType)
	if err != nil {
		log.Errorf("fetch quotes: %v", err)
		return types.NewErrorResponse(500, "failed to price candidate routes")
	}
	if len(quotes) == 0 {
		rc.Metrics().Count("quote.no_route")
		return types.NewErrorResponse(404, "No valid quotes found")
	}

	// §4.5 step 3: L2 chains re-read pool state before gas estimation, and
	// Arbitrum additionally folds L1 data-posting costs into each estimate.
	// Both are best-effort; a miss leaves the stale state / nil l2Data.
	if chain.IsL2 && p.fresh != nil {
		if err := p.refreshQuotePools(ctx, chain.ID, quotes); err != nil {
			log.Warnf("refresh pool state for gas estimation: %v", err)
		}
	}
	var l2Data *ports.L2GasData
	if chain.IsArbitrum {
		if provider, ok := p.gasAtt.Provider.(ports.L2GasDataProvider); ok {
			data, l2Err := provider.GetL2GasData(ctx, chain.ID)
			if l2Err != nil {
				log.Warnf("read L1 gas data: %v", l2Err)
			} else {
				l2Data = data
			}
		}
	}
	if err := p.gasAtt.Attach(ctx, chain.ID, inToken, outToken, req.TradeType, quotes, l2Data); err != nil {
		log.Errorf("attach gas: %v", err)
		return types.NewErrorResponse(500, "failed to estimate gas")
	}

	splits := aggregator.FindBestSplits(quotes, req.TradeType, p.cfg.SplitConfig)
	if len(splits) == 0 {
		rc.Metrics().Count("quote.no_route")
		return types.NewErrorResponse(404, "No valid quotes found")
	}

	// FindBestSplits already returns its combinations ranked; only the
	// top-N cut remains, bounding how many splits the pool refresh and the
	// simulation loop touch.
	ranked := splits
	if len(ranked) > p.cfg.TopNCandidates {
		ranked = ranked[:p.cfg.TopNCandidates]
	}

	if p.fresh != nil {
		if err := p.refreshPools(ctx, chain.ID, ranked); err != nil {
			log.Warnf("refresh pool details: %v", err)
		}
	}

	best := ranked[0]
	if p.cfg.SimulationEnabled && req.WantsSimulation() {
		opts := ports.SwapOptions{
			Recipient:         req.Recipient,
			SlippageTolerance: *req.SlippageTolerance,
			Deadline:          req.Deadline,
			SimulateFromAddr:  req.SimulateFromAddr,
		}
		simulated, err := p.sim.Run(ctx, chain.ID, opts, ranked, inToken, outToken, req.Amount, req.TradeType, nil, nil)
		if err != nil {
			// §4.1 step 9: every simulation attempt failed and none of them
			// even captured a fallback swap_info to build a response around.
			log.Warnf("simulation: %v", err)
			rc.Metrics().Count("quote.simulation_failed")
			return types.NewErrorResponse(404, "No valid quotes found")
		}
		best = simulated
	}

	if inToken != nil && outToken != nil {
		best.TokensInfo = map[types.Address]types.Token{
			inToken.Address:  *inToken,
			outToken.Address: *outToken,
		}
	}

	resp := respond.AssembleResponse(req, best, splitUsesCachedRoute(best, cachedKeys))

	if resp.Error == nil {
		p.writeCacheAsync(chain.ID, inWrapped, outWrapped, req, best, inToken, outToken)
	}

	return resp
}

// readCachedRoutes implements the read half of §4.8's caching policy: only
// ASYNC+FAST requests consult the bucketed cache. A nil repository (cache
// disabled) always misses. The returned set holds the pool-address-sequence
// key of every route sourced from the cache, so the caller can later tell
// whether the *finally selected* split actually used one of them —
// hits_cached_routes must be false when the cache contributed a route that
// was later pruned by the split finder (§4.1 step 4, §9 Open Question).
func (p *Pipeline) readCachedRoutes(ctx context.Context, chainID int64, in, out types.Address, req *types.QuoteRequest) (map[string]bool, []*types.Route) {
	if p.cached == nil || req.Mode != types.LambdaAsync || req.QuoteType != types.QuoteFast {
		return nil, nil
	}

	buckets, err := p.cached.GetCachedRoutes(ctx, chainID, in, out, req.TradeType)
	if err != nil {
		return nil, nil
	}

	var routes []*types.Route
	keys := make(map[string]bool)
	for _, b := range buckets {
		if !b.Found {
			continue
		}
		for _, r := range b.Routes {
			keys[routeKey(r)] = true
			routes = append(routes, r)
		}
	}
	return keys, routes
}

// splitUsesCachedRoute reports whether any route in the chosen split was
// sourced from the cache (§4.1's hits_cached_routes contract).
func splitUsesCachedRoute(split *types.QuoteSplit, cachedKeys map[string]bool) bool {
	if len(cachedKeys) == 0 {
		return false
	}
	for _, q := range split.Quotes {
		if q.Route == nil {
			continue
		}
		if cachedKeys[routeKey(q.Route)] {
			return true
		}
	}
	return false
}

// writeCacheAsync implements the write half of §4.8's caching policy: only
// ASYNC+FAST requests write the winning split's routes back to the bucketed
// cache, in the background. A save failure is swallowed — cache writes never
// fail a request.
func (p *Pipeline) writeCacheAsync(chainID int64, in, out types.Address, req *types.QuoteRequest, split *types.QuoteSplit, inToken, outToken *types.Token) {
	if p.cached == nil || req.Mode != types.LambdaAsync || req.QuoteType != types.QuoteFast {
		return
	}
	usd := estimateUsdNotional(req, inToken, outToken)
	bucket := cache.BucketOf(usd)
	for _, q := range split.Quotes {
		if q.Route == nil {
			continue
		}
		route := q.Route
		go func() {
			key := types.CacheKey{ChainID: chainID, TokenIn: in, TokenOut: out, TradeType: req.TradeType, Bucket: bucket}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = p.cached.SaveCachedRoutes(ctx, route, key)
		}()
	}
}

// estimateUsdNotional converts req.Amount into a USD notional for cache
// bucketing (§4.6), pricing against the traded token's USDPrice: the input
// token for EXACT_IN (amount is denominated in tokenIn), the output token
// for EXACT_OUT (amount is denominated in tokenOut). A token with no
// resolved USDPrice (types.Token's "unresolved" sentinel, §3) falls back to
// 0, landing the write in the smallest bucket rather than guessing.
func estimateUsdNotional(req *types.QuoteRequest, inToken, outToken *types.Token) float64 {
	token := inToken
	if req.TradeType == types.ExactOut {
		token = outToken
	}
	if token == nil || token.USDPrice == nil || req.Amount == nil {
		return 0
	}

	decimals := token.Decimals
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	human := new(big.Float).Quo(new(big.Float).SetInt(req.Amount), scale)
	usd := new(big.Float).Mul(human, big.NewFloat(*token.USDPrice))

	f, _ := usd.Float64()
	return f
}

// refreshQuotePools re-reads reserve/liquidity state for every distinct
// pool across the fetched quotes before gas estimation (§4.5 step 3).
// Percentage-expanded copies of a route share the same underlying path
// slice, so updating one copy updates them all.
func (p *Pipeline) refreshQuotePools(ctx context.Context, chainID int64, quotes []*types.QuoteBasic) error {
	seen := make(map[string]*types.Pool)
	for _, q := range quotes {
		if q.Route == nil {
			continue
		}
		for _, pool := range q.Route.Path {
			seen[pool.IdentityKey()] = pool
		}
	}
	pools := make([]*types.Pool, 0, len(seen))
	for _, pool := range seen {
		pools = append(pools, pool)
	}

	fresh, err := p.fresh.GetPoolsDetails(ctx, chainID, pools)
	if err != nil {
		return err
	}
	for _, q := range quotes {
		if q.Route == nil {
			continue
		}
		for i, pool := range q.Route.Path {
			if updated, ok := fresh[pool.IdentityKey()]; ok {
				q.Route.Path[i] = updated
			}
		}
	}
	return nil
}

func (p *Pipeline) refreshPools(ctx context.Context, chainID int64, splits []*types.QuoteSplit) error {
	for _, s := range splits {
		fresh, err := p.fresh.GetPoolDetailsForRoute(ctx, chainID, s.Quotes)
		if err != nil {
			return err
		}
		for _, q := range s.Quotes {
			if q.Route == nil {
				continue
			}
			for i, pool := range q.Route.Path {
				if updated, ok := fresh[pool.IdentityKey()]; ok {
					q.Route.Path[i] = updated
				}
			}
		}
	}
	return nil
}

func mergeRoutes(live, cached []*types.Route) []*types.Route {
	seen := make(map[string]bool, len(live)+len(cached))
	out := make([]*types.Route, 0, len(live)+len(cached))
	for _, r := range live {
		key := routeKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	for _, r := range cached {
		key := routeKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func routeKey(r *types.Route) string {
	key := ""
	for _, addr := range r.PoolAddressSequence() {
		key += addr + "|"
	}
	return key
}

// parseProtocols mirrors internal/validate's own CSV-to-Protocol parsing
// (kept duplicated rather than exported, since it's a one-line format
// agreement rather than shared logic worth coupling the two packages over).
func parseProtocols(csv string) []types.Protocol {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]types.Protocol, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, types.Protocol(p))
	}
	return out
}
