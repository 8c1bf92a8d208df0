package orchestrator

import (
	"context"
	"math/big"
	"testing"
	"time"

	"dex-aggregator/internal/aggregator"
	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/reqctx"
	"dex-aggregator/internal/types"
	"dex-aggregator/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokens struct{ mock.Mock }

func (m *mockTokens) SearchForToken(ctx context.Context, chainID int64, address string) (*types.Token, *types.CurrencyInfo, error) {
	args := m.Called(ctx, chainID, address)
	var tok *types.Token
	var cur *types.CurrencyInfo
	if args.Get(0) != nil {
		tok = args.Get(0).(*types.Token)
	}
	if args.Get(1) != nil {
		cur = args.Get(1).(*types.CurrencyInfo)
	}
	return tok, cur, args.Error(2)
}

type mockChains struct{ mock.Mock }

func (m *mockChains) GetChain(ctx context.Context, chainID int64) (*ports.Chain, error) {
	args := m.Called(ctx, chainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Chain), args.Error(1)
}

type mockRoutes struct{ mock.Mock }

func (m *mockRoutes) GetRoutes(ctx context.Context, chainID int64, in, out types.Address, protocols []types.Protocol, tradeType types.TradeType, hooks types.HooksOptions, skip bool) ([]*types.Route, error) {
	args := m.Called(ctx, chainID, in, out, protocols, tradeType, hooks, skip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Route), args.Error(1)
}

func (m *mockRoutes) FetchRoutesForTokens(ctx context.Context, chainID int64, in, out types.Address) ([]*types.Route, error) {
	args := m.Called(ctx, chainID, in, out)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Route), args.Error(1)
}

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) FetchQuotes(ctx context.Context, chainID int64, in, out *types.Token, amount *big.Int, routes []*types.Route, tradeType types.TradeType, tags ...string) ([]*types.QuoteBasic, error) {
	args := m.Called(ctx, chainID, in, out, amount, routes, tradeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.QuoteBasic), args.Error(1)
}

type mockGasProvider struct{ mock.Mock }

func (m *mockGasProvider) GetCurrentGasPrice(ctx context.Context, chainID int64) (uint64, error) {
	args := m.Called(ctx, chainID)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockGasProvider) EstimateGas(ctx context.Context, in, out *types.Token, amount *big.Int, chainID int64, tradeType types.TradeType, quote *types.QuoteBasic, gasPriceWei *uint64, l2Data *ports.L2GasData) (*types.GasDetails, error) {
	args := m.Called(ctx, in, out, amount, chainID, tradeType, quote, gasPriceWei, l2Data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GasDetails), args.Error(1)
}

type mockGasConverter struct{ mock.Mock }

func (m *mockGasConverter) PrefetchGasPools(ctx context.Context, chainID int64, quoteToken *types.Token) (ports.GasPools, error) {
	args := m.Called(ctx, chainID, quoteToken)
	return args.Get(0), args.Error(1)
}

func (m *mockGasConverter) UpdateQuotesGasDetails(ctx context.Context, chainID int64, quoteToken *types.Token, quotes []*types.QuoteBasic, prefetched ports.GasPools) error {
	args := m.Called(ctx, chainID, quoteToken, quotes, prefetched)
	for _, q := range quotes {
		if q.GasDetails == nil {
			q.GasDetails = &types.GasDetails{}
		}
		q.GasDetails.GasCostInQuoteToken = big.NewInt(0)
	}
	return args.Error(0)
}

type mockSimulator struct{ mock.Mock }

func (m *mockSimulator) Simulate(ctx context.Context, chainID int64, opts ports.SwapOptions, split *types.QuoteSplit, in, out *types.Token, inputAmount, expectedAmount *big.Int, gasPriceWei *uint64, block *int64) (*types.QuoteSplit, error) {
	args := m.Called(ctx, chainID, opts, split, in, out, inputAmount, expectedAmount, gasPriceWei, block)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.QuoteSplit), args.Error(1)
}

type mockCached struct{ mock.Mock }

func (m *mockCached) SaveCachedRoutes(ctx context.Context, route *types.Route, key types.CacheKey) error {
	args := m.Called(ctx, route, key)
	return args.Error(0)
}

func (m *mockCached) GetCachedRoutes(ctx context.Context, chainID int64, in, out types.Address, tradeType types.TradeType) ([]types.CachedRouteBucketResult, error) {
	args := m.Called(ctx, chainID, in, out, tradeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CachedRouteBucketResult), args.Error(1)
}

func (m *mockCached) DeleteCachedRoutes(ctx context.Context, key types.CacheKey) (bool, string) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.String(1)
}

func (m *mockCached) ConstructCachedRouteKey(chainID int64, in, out types.Address, tradeType types.TradeType, bucket types.UsdBucket) string {
	args := m.Called(chainID, in, out, tradeType, bucket)
	return args.String(0)
}

const (
	tokenInAddr  = "0x1111111111111111111111111111111111111111"
	tokenOutAddr = "0x2222222222222222222222222222222222222222"
)

func pool(addr string) *types.Pool {
	return &types.Pool{
		Protocol: types.ProtocolV2,
		Address:  types.Address(addr),
		Token0:   types.Token{Address: tokenInAddr},
		Token1:   types.Token{Address: tokenOutAddr},
		Reserve0: big.NewInt(1_000_000),
		Reserve1: big.NewInt(1_000_000),
	}
}

func buildPipeline(t *testing.T, tokens *mockTokens, chains *mockChains, routes *mockRoutes, fetcher *mockFetcher, gasProvider *mockGasProvider, gasConverter *mockGasConverter) *Pipeline {
	t.Helper()
	return buildPipelineWithCache(t, tokens, chains, routes, nil, fetcher, gasProvider, gasConverter)
}

func buildPipelineWithCache(t *testing.T, tokens *mockTokens, chains *mockChains, routes *mockRoutes, cached ports.CachedRoutesRepository, fetcher *mockFetcher, gasProvider *mockGasProvider, gasConverter *mockGasConverter) *Pipeline {
	t.Helper()
	cfg := Config{
		PercentageStep: 100,
		SplitConfig:    aggregator.SplitConfig{MaxSplits: 1, MaxSplitRoutes: 4, RouteSplitTimeoutMs: 50},
		TopNCandidates: 3,
	}
	return New(cfg, validate.New([]int64{1}), tokens, chains, routes, cached, fetcher, gasProvider, gasConverter, &mockSimulator{}, nil)
}

func setupHappyPathCollaborators(t *testing.T) (*mockTokens, *mockChains, *mockRoutes, *mockFetcher, *mockGasProvider, *mockGasConverter, *types.Route) {
	t.Helper()
	tokens := &mockTokens{}
	inTok := &types.Token{Address: tokenInAddr}
	outTok := &types.Token{Address: tokenOutAddr}
	tokens.On("SearchForToken", mock.Anything, int64(1), tokenInAddr).Return(inTok, (*types.CurrencyInfo)(nil), nil)
	tokens.On("SearchForToken", mock.Anything, int64(1), tokenOutAddr).Return(outTok, (*types.CurrencyInfo)(nil), nil)

	chains := &mockChains{}
	chains.On("GetChain", mock.Anything, int64(1)).Return(&ports.Chain{ID: 1}, nil)

	route := types.NewRoute([]*types.Pool{pool("0xp1")}, 100)
	routes := &mockRoutes{}
	routes.On("GetRoutes", mock.Anything, int64(1), types.Address(tokenInAddr), types.Address(tokenOutAddr), mock.Anything, types.ExactIn, mock.Anything, mock.Anything).
		Return([]*types.Route{route}, nil)

	quote := &types.QuoteBasic{Route: route.WithPercentage(100), Amount: big.NewInt(990_000)}
	fetcher := &mockFetcher{}
	fetcher.On("FetchQuotes", mock.Anything, int64(1), inTok, outTok, mock.Anything, mock.Anything, types.ExactIn).
		Return([]*types.QuoteBasic{quote}, nil)

	gasProvider := &mockGasProvider{}
	gasProvider.On("GetCurrentGasPrice", mock.Anything, int64(1)).Return(uint64(30_000_000_000), nil)
	gasProvider.On("EstimateGas", mock.Anything, inTok, outTok, mock.Anything, int64(1), types.ExactIn, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.GasDetails{GasCostWei: big.NewInt(1000)}, nil)

	gasConverter := &mockGasConverter{}
	gasConverter.On("PrefetchGasPools", mock.Anything, int64(1), outTok).Return(nil, nil)
	gasConverter.On("UpdateQuotesGasDetails", mock.Anything, int64(1), outTok, mock.Anything, mock.Anything).Return(nil)

	return tokens, chains, routes, fetcher, gasProvider, gasConverter, route
}

func TestQuoteHappyPathReturnsRoute(t *testing.T) {
	tokens, chains, routes, fetcher, gasProvider, gasConverter, _ := setupHappyPathCollaborators(t)

	p := buildPipeline(t, tokens, chains, routes, fetcher, gasProvider, gasConverter)

	req := &types.QuoteRequest{
		TokenInAddress:  tokenInAddr,
		TokenInChainID:  1,
		TokenOutAddress: tokenOutAddr,
		TokenOutChainID: 1,
		Amount:          big.NewInt(1_000_000),
		TradeType:       types.ExactIn,
	}

	resp := p.Quote(context.Background(), reqctx.NewNoop(), req)
	require.Nil(t, resp.Error)
	assert.Equal(t, big.NewInt(990_000), resp.QuoteAmount)
	require.Len(t, resp.Route, 1)
	assert.False(t, resp.HitsCachedRoutes)
}

func TestQuoteRejectsInvalidRequest(t *testing.T) {
	p := buildPipeline(t, &mockTokens{}, &mockChains{}, &mockRoutes{}, &mockFetcher{}, &mockGasProvider{}, &mockGasConverter{})
	req := &types.QuoteRequest{TokenInChainID: 99}
	resp := p.Quote(context.Background(), reqctx.NewNoop(), req)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 400, resp.Error.Code)
}

func TestQuoteReturns404WhenNoRoutesFound(t *testing.T) {
	tokens := &mockTokens{}
	inTok := &types.Token{Address: tokenInAddr}
	outTok := &types.Token{Address: tokenOutAddr}
	tokens.On("SearchForToken", mock.Anything, int64(1), tokenInAddr).Return(inTok, (*types.CurrencyInfo)(nil), nil)
	tokens.On("SearchForToken", mock.Anything, int64(1), tokenOutAddr).Return(outTok, (*types.CurrencyInfo)(nil), nil)

	chains := &mockChains{}
	chains.On("GetChain", mock.Anything, int64(1)).Return(&ports.Chain{ID: 1}, nil)

	routes := &mockRoutes{}
	routes.On("GetRoutes", mock.Anything, int64(1), mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*types.Route{}, nil)

	p := buildPipeline(t, tokens, chains, routes, &mockFetcher{}, &mockGasProvider{}, &mockGasConverter{})

	req := &types.QuoteRequest{
		TokenInAddress:  tokenInAddr,
		TokenInChainID:  1,
		TokenOutAddress: tokenOutAddr,
		TokenOutChainID: 1,
		Amount:          big.NewInt(1_000_000),
		TradeType:       types.ExactIn,
	}

	resp := p.Quote(context.Background(), reqctx.NewNoop(), req)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 404, resp.Error.Code)
}

// TestQuoteSyncModeNeverTouchesCache covers one of §4.8's caching-policy
// matrix cells at the orchestrator level: a SYNC request must neither read
// nor write the bucketed cache, even when a cache collaborator is wired in.
func TestQuoteSyncModeNeverTouchesCache(t *testing.T) {
	tokens, chains, routes, fetcher, gasProvider, gasConverter, _ := setupHappyPathCollaborators(t)
	cached := &mockCached{}

	p := buildPipelineWithCache(t, tokens, chains, routes, cached, fetcher, gasProvider, gasConverter)

	req := &types.QuoteRequest{
		TokenInAddress:  tokenInAddr,
		TokenInChainID:  1,
		TokenOutAddress: tokenOutAddr,
		TokenOutChainID: 1,
		Amount:          big.NewInt(1_000_000),
		TradeType:       types.ExactIn,
		Mode:            types.LambdaSync,
		QuoteType:       types.QuoteFast,
	}

	resp := p.Quote(context.Background(), reqctx.NewNoop(), req)
	require.Nil(t, resp.Error)
	assert.False(t, resp.HitsCachedRoutes)
	cached.AssertNotCalled(t, "GetCachedRoutes", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	cached.AssertNotCalled(t, "SaveCachedRoutes", mock.Anything, mock.Anything, mock.Anything)
}

// TestQuoteAsyncFastReadsAndWritesCache covers the ASYNC+FAST cell of §4.8's
// matrix: the cache is read after live route discovery and merged in, a route
// sourced from it marks hits_cached_routes true when it survives into the
// winning split, and the winning split is written back asynchronously.
func TestQuoteAsyncFastReadsAndWritesCache(t *testing.T) {
	tokens, chains, routes, fetcher, gasProvider, gasConverter, _ := setupHappyPathCollaborators(t)

	cached := &mockCached{}
	cachedRoute := types.NewRoute([]*types.Pool{pool("0xp1")}, 100)
	cached.On("GetCachedRoutes", mock.Anything, int64(1), types.Address(tokenInAddr), types.Address(tokenOutAddr), types.ExactIn).
		Return([]types.CachedRouteBucketResult{{Bucket: types.Bucket1M, Found: true, Routes: []*types.Route{cachedRoute}}}, nil)

	saved := make(chan struct{}, 4)
	cached.On("SaveCachedRoutes", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved <- struct{}{} }).
		Return(nil)

	p := buildPipelineWithCache(t, tokens, chains, routes, cached, fetcher, gasProvider, gasConverter)

	req := &types.QuoteRequest{
		TokenInAddress:  tokenInAddr,
		TokenInChainID:  1,
		TokenOutAddress: tokenOutAddr,
		TokenOutChainID: 1,
		Amount:          big.NewInt(1_000_000),
		TradeType:       types.ExactIn,
		Mode:            types.LambdaAsync,
		QuoteType:       types.QuoteFast,
	}

	resp := p.Quote(context.Background(), reqctx.NewNoop(), req)
	require.Nil(t, resp.Error)
	assert.True(t, resp.HitsCachedRoutes)

	select {
	case <-saved:
	case <-time.After(time.Second):
		t.Fatal("expected writeCacheAsync to save the winning split's route")
	}
}
