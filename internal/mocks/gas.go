package mocks

import (
	"context"
	"math/big"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

const gasUsePerHop = 120_000

// Gas is a combined ports.GasEstimateProvider + ports.GasConverter demo
// implementation: a fixed gas price and a per-hop gas-use heuristic,
// converted to quote-token units via a fixed ETH/USD reference price
// (the teacher has no gas model at all; this is new math grounded in the
// spec's own gas_cost_eth/gas_cost_in_quote_token fields, §3).
type Gas struct {
	GasPriceWei uint64
	EthUSDPrice float64
}

// NewGas builds a Gas estimator with a representative fixed gas price
// (20 gwei) and ETH/USD reference price.
func NewGas() *Gas {
	return &Gas{GasPriceWei: 20_000_000_000, EthUSDPrice: 3000}
}

func (g *Gas) GetCurrentGasPrice(ctx context.Context, chainID int64) (uint64, error) {
	return g.GasPriceWei, nil
}

// EstimateGas prices one quote at gasUsePerHop per pool in its route.
func (g *Gas) EstimateGas(ctx context.Context, in, out *types.Token, amount *big.Int, chainID int64, tradeType types.TradeType, quote *types.QuoteBasic, gasPriceWei *uint64, l2Data *ports.L2GasData) (*types.GasDetails, error) {
	hops := 1
	if quote.Route != nil && len(quote.Route.Path) > 0 {
		hops = len(quote.Route.Path)
	}
	priceWei := g.GasPriceWei
	if gasPriceWei != nil {
		priceWei = *gasPriceWei
	}

	gasUse := big.NewInt(int64(hops * gasUsePerHop))
	gasCostWei := new(big.Int).Mul(gasUse, big.NewInt(int64(priceWei)))

	if l2Data != nil && l2Data.L1GasCost != nil {
		gasCostWei = new(big.Int).Add(gasCostWei, l2Data.L1GasCost)
	}

	costEth := new(big.Float).Quo(new(big.Float).SetInt(gasCostWei), new(big.Float).SetInt(tenPow18))
	ethF, _ := costEth.Float64()

	return &types.GasDetails{
		GasPriceWei: big.NewInt(int64(priceWei)),
		GasCostWei:  gasCostWei,
		GasCostEth:  ethF,
		GasUse:      gasUse,
	}, nil
}

// GetL2GasData returns a fixed, representative Arbitrum L1 data-posting
// cost so the orchestrator's IsArbitrum branch has real numbers to fold
// into EstimateGas.
func (g *Gas) GetL2GasData(ctx context.Context, chainID int64) (*ports.L2GasData, error) {
	return &ports.L2GasData{
		L1GasUsed: big.NewInt(3000),
		L1GasCost: new(big.Int).Mul(big.NewInt(3000), big.NewInt(int64(g.GasPriceWei)/10)),
	}, nil
}

// PrefetchGasPools is a no-op: this demo converter prices gas against a
// fixed reference rather than a real ETH/quote-token reference pool.
func (g *Gas) PrefetchGasPools(ctx context.Context, chainID int64, quoteToken *types.Token) (ports.GasPools, error) {
	return nil, nil
}

// UpdateQuotesGasDetails converts each quote's wei-denominated gas cost
// into quote-token units using the fixed ETH/USD price and the quote
// token's own USD price (defaulting to 1.0, i.e. a stablecoin, when the
// token carries none) — gasCostInQuoteToken = gasCostEth * ethUsd /
// quoteTokenUsd, scaled by the quote token's decimals.
func (g *Gas) UpdateQuotesGasDetails(ctx context.Context, chainID int64, quoteToken *types.Token, quotes []*types.QuoteBasic, prefetched ports.GasPools) error {
	quoteUSD := 1.0
	if quoteToken != nil && quoteToken.USDPrice != nil && *quoteToken.USDPrice > 0 {
		quoteUSD = *quoteToken.USDPrice
	}
	decimals := 18
	if quoteToken != nil && quoteToken.Decimals > 0 {
		decimals = quoteToken.Decimals
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))

	for _, q := range quotes {
		if q.GasDetails == nil {
			continue
		}
		usdCost := q.GasDetails.GasCostEth * g.EthUSDPrice
		tokenAmount := usdCost / quoteUSD
		scaled := new(big.Float).Mul(big.NewFloat(tokenAmount), scale)
		converted, _ := scaled.Int(nil)
		q.GasDetails.GasCostInQuoteToken = converted
	}
	return nil
}

var _ ports.GasEstimateProvider = (*Gas)(nil)
var _ ports.GasConverter = (*Gas)(nil)
var _ ports.L2GasDataProvider = (*Gas)(nil)
