// Package ports declares the collaborator interfaces the core orchestrator
// depends on (§6). Every implementation — live chain-backed or an
// internal/mocks stand-in — satisfies these exactly; the core never takes a
// concrete dependency on any of them.
package ports

import (
	"context"
	"math/big"
	"net/http"

	"dex-aggregator/internal/types"
)

// Chain describes chain metadata the core needs (native wrapped address,
// L2 flag for gas estimation branching in §4.5 step 3).
type Chain struct {
	ID            int64
	Name          string
	IsL2          bool
	IsArbitrum    bool
	NativeWrapped types.Address
}

// ChainRepository resolves chain metadata by id.
type ChainRepository interface {
	GetChain(ctx context.Context, chainID int64) (*Chain, error)
}

// TokenProvider resolves a raw address to a Token or CurrencyInfo, used for
// the native-currency / wrapped-currency resolution in §4.1 step 2.
type TokenProvider interface {
	SearchForToken(ctx context.Context, chainID int64, address string) (*types.Token, *types.CurrencyInfo, error)
}

// TokenHandler resolves one or many tokens to their full metadata.
type TokenHandler interface {
	GetToken(ctx context.Context, chainID int64, address types.Address) (*types.Token, error)
	GetTokens(ctx context.Context, chainID int64, addresses []types.Address) (map[types.Address]*types.Token, error)
}

// RoutesRepository discovers candidate routes between two tokens from an
// external indexer (§4.1 step 3).
type RoutesRepository interface {
	GetRoutes(ctx context.Context, chainID int64, in, out types.Address, protocols []types.Protocol, tradeType types.TradeType, hooks types.HooksOptions, skipPoolsForTokensCache bool) ([]*types.Route, error)
	FetchRoutesForTokens(ctx context.Context, chainID int64, in, out types.Address) ([]*types.Route, error)
}

// QuoteFetcher prices a batch of percentage-tagged routes against an
// on-chain (or simulated) quoter (§4.5 step 2).
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, chainID int64, in, out *types.Token, amount *big.Int, routes []*types.Route, tradeType types.TradeType, tags ...string) ([]*types.QuoteBasic, error)
}

// L2GasData is the chain-specific extra gas data Arbitrum-style L2s need
// folded into a gas estimate (§4.5 step 3).
type L2GasData struct {
	L1GasUsed *big.Int
	L1GasCost *big.Int
}

// GasEstimateProvider prices gas for one quote at a time (the caller in
// internal/gas fans this out concurrently across quotes).
type GasEstimateProvider interface {
	GetCurrentGasPrice(ctx context.Context, chainID int64) (uint64, error)
	EstimateGas(ctx context.Context, in, out *types.Token, amount *big.Int, chainID int64, tradeType types.TradeType, quote *types.QuoteBasic, gasPriceWei *uint64, l2Data *L2GasData) (*types.GasDetails, error)
}

// L2GasDataProvider is an optional upgrade of GasEstimateProvider: gas
// providers that can read Arbitrum-style L1 gas data implement it, and the
// orchestrator consults it (via type assertion) only for Arbitrum chains.
type L2GasDataProvider interface {
	GetL2GasData(ctx context.Context, chainID int64) (*L2GasData, error)
}

// GasPools is an opaque prefetch handle returned by PrefetchGasPools and
// passed back into UpdateQuotesGasDetails to avoid refetching reference
// pools per quote.
type GasPools interface{}

// GasConverter converts a quote's gas cost (wei) into quote-token units via
// reference pools (§2 "Gas estimator + converter").
type GasConverter interface {
	PrefetchGasPools(ctx context.Context, chainID int64, quoteToken *types.Token) (GasPools, error)
	UpdateQuotesGasDetails(ctx context.Context, chainID int64, quoteToken *types.Token, quotes []*types.QuoteBasic, prefetched GasPools) error
}

// FreshPoolDetailsWrapper refreshes reserves/liquidity for pools already
// chosen by the strategy, just before response assembly (§4.1 step 7).
type FreshPoolDetailsWrapper interface {
	GetPoolDetailsForRoute(ctx context.Context, chainID int64, quotes []*types.QuoteBasic) (map[string]*types.Pool, error)
	GetPoolsDetails(ctx context.Context, chainID int64, pools []*types.Pool) (map[string]*types.Pool, error)
}

// SwapOptions carries the recipient/slippage/deadline inputs a simulator
// needs to build and execute a candidate trade (§4.9).
type SwapOptions struct {
	Recipient         string
	SlippageTolerance float64
	Deadline          *int64
	SimulateFromAddr  string
}

// Simulator attempts to execute one QuoteSplit and returns it annotated
// with a SimulationResult (§4.9, §6).
type Simulator interface {
	Simulate(ctx context.Context, chainID int64, opts SwapOptions, split *types.QuoteSplit, in, out *types.Token, inputAmount, expectedAmount *big.Int, gasPriceWei *uint64, block *int64) (*types.QuoteSplit, error)
}

// CachedRoutesRepository is the §4.6 bucketed cache contract.
type CachedRoutesRepository interface {
	SaveCachedRoutes(ctx context.Context, route *types.Route, key types.CacheKey) error
	GetCachedRoutes(ctx context.Context, chainID int64, in, out types.Address, tradeType types.TradeType) ([]types.CachedRouteBucketResult, error)
	DeleteCachedRoutes(ctx context.Context, key types.CacheKey) (bool, string)
	ConstructCachedRouteKey(chainID int64, in, out types.Address, tradeType types.TradeType, bucket types.UsdBucket) string
}

// Metrics is the minimal counter/timer sink a RequestContext exposes.
type Metrics interface {
	Count(name string, tags ...string)
	Timer(name string) func()
}

// HTTPFetcher is the opaque HTTP callable a RequestContext exposes to
// collaborators that need to make outbound calls.
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the structured logging surface a RequestContext exposes.
type Logger interface {
	WithField(key string, value interface{}) Logger
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// RequestContext bundles the collaborators the spec calls "Context":
// logger, metrics, and an opaque HTTP fetcher (§6).
type RequestContext interface {
	Logger() Logger
	Metrics() Metrics
	Fetcher() HTTPFetcher
}
