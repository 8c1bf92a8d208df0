// Package mocks provides in-memory, demo-grade implementations of every
// ports.* collaborator interface, so cmd/quoted and integration tests can
// run the full §4.1 pipeline without a live chain. The seed trading pairs
// and reserve values are the teacher's MockPoolCollector.InitMockPools
// data (internal/collector/pool_collector.go in the original tree);
// pricing reuses the teacher's PriceCalculator.CalculateOutput constant-
// product (x*y=k, 0.3% fee) formula (internal/aggregator/price_calculator.go).
// None of this package is a production collaborator — it plays the same
// demo-server role the teacher's own mock collector played.
package mocks

import (
	"context"
	"fmt"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

var (
	weth = types.MustAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	usdt = types.MustAddress("0xdac17f958d2ee523a2206206994597c13d831ec7")
	usdc = types.MustAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	dai  = types.MustAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
)

var seedTokens = map[types.Address]types.Token{
	weth: {Address: weth, Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
	usdt: {Address: usdt, Symbol: "USDT", Name: "Tether USD", Decimals: 6},
	usdc: {Address: usdc, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	dai:  {Address: dai, Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18},
}

// Tokens is the ports.TokenProvider + ports.TokenHandler demo
// implementation: a fixed lookup table seeded with the teacher's four
// major tokens, plus native-currency resolution to WETH.
type Tokens struct {
	byAddress     map[types.Address]types.Token
	nativeWrapped types.Address
}

// NewTokens builds a Tokens table seeded with WETH/USDT/USDC/DAI, treating
// nativeWrapped (WETH by default) as the wrapped form of the chain's native
// currency (§3 CurrencyInfo).
func NewTokens() *Tokens {
	byAddress := make(map[types.Address]types.Token, len(seedTokens))
	for addr, tok := range seedTokens {
		byAddress[addr] = tok
	}
	return &Tokens{byAddress: byAddress, nativeWrapped: weth}
}

// SearchForToken resolves the native-currency sentinel ("", "ETH" or the
// zero address, matched exactly) to the chain's wrapped native token and a CurrencyInfo
// flagging it native; any other address resolves to a known or synthetic
// Token with CurrencyInfo nil (§4.1 step 2).
func (t *Tokens) SearchForToken(ctx context.Context, chainID int64, address string) (*types.Token, *types.CurrencyInfo, error) {
	if address == "" || address == "ETH" || address == "0x0000000000000000000000000000000000000000" {
		wrapped := t.byAddress[t.nativeWrapped]
		return &wrapped, &types.CurrencyInfo{IsNative: true, WrappedAddress: t.nativeWrapped, UserSymbol: "ETH"}, nil
	}

	addr, err := types.NewAddress(address)
	if err != nil {
		return nil, nil, fmt.Errorf("mocks: invalid token address %q: %w", address, err)
	}
	if tok, ok := t.byAddress[addr]; ok {
		return &tok, nil, nil
	}
	// Unknown tokens resolve to the §3 "unresolved" sentinel: a Token with
	// just the address populated, decimals/symbol/price left zero.
	return &types.Token{Address: addr}, nil, nil
}

// GetToken looks up a single token by address.
func (t *Tokens) GetToken(ctx context.Context, chainID int64, address types.Address) (*types.Token, error) {
	if tok, ok := t.byAddress[address]; ok {
		return &tok, nil
	}
	return &types.Token{Address: address}, nil
}

// GetTokens looks up many tokens at once.
func (t *Tokens) GetTokens(ctx context.Context, chainID int64, addresses []types.Address) (map[types.Address]*types.Token, error) {
	out := make(map[types.Address]*types.Token, len(addresses))
	for _, addr := range addresses {
		tok, _ := t.GetToken(ctx, chainID, addr)
		out[addr] = tok
	}
	return out, nil
}

var _ ports.TokenProvider = (*Tokens)(nil)
var _ ports.TokenHandler = (*Tokens)(nil)
