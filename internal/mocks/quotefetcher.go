package mocks

import (
	"context"
	"math/big"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

// QuoteFetcher prices a batch of percentage-tagged routes against the same
// constant-product (x*y=k, 0.3% fee) formula the teacher's PriceCalculator
// uses (internal/aggregator/price_calculator.go:CalculateOutput), walked
// across each route's pool path. V3/V4 pools here are priced with the same
// formula over their Liquidity field standing in for reserves, since this
// is a demo fixture rather than a real concentrated-liquidity quoter.
type QuoteFetcher struct{}

func NewQuoteFetcher() *QuoteFetcher { return &QuoteFetcher{} }

var feeNumerator = big.NewInt(997)
var feeDenominator = big.NewInt(1000)

// poolOutput mirrors the teacher's CalculateOutput: amountOut =
// (amountIn * 997 * reserveOut) / (reserveIn * 1000 + amountIn * 997).
func poolOutput(reserveIn, reserveOut, amountIn *big.Int) *big.Int {
	if reserveIn == nil || reserveOut == nil || amountIn == nil {
		return big.NewInt(0)
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 || amountIn.Sign() <= 0 {
		return big.NewInt(0)
	}
	amountInWithFee := new(big.Int).Mul(amountIn, feeNumerator)
	numerator := new(big.Int).Mul(reserveOut, amountInWithFee)
	denominator := new(big.Int).Mul(reserveIn, feeDenominator)
	denominator.Add(denominator, amountInWithFee)
	if denominator.Sign() == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Div(numerator, denominator)
}

// poolInput is poolOutput's inverse: the amountIn needed to receive exactly
// amountOut, rounded up so the pool invariant is never violated by
// under-supplying input (standard AMM "exact output" quoting).
func poolInput(reserveIn, reserveOut, amountOut *big.Int) *big.Int {
	if reserveIn == nil || reserveOut == nil || amountOut == nil {
		return big.NewInt(0)
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 || amountOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return big.NewInt(0)
	}
	numerator := new(big.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, feeDenominator)
	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeNumerator)
	if denominator.Sign() == 0 {
		return big.NewInt(0)
	}
	amountIn := new(big.Int).Div(numerator, denominator)
	// Round up: integer division truncates, and under-supplying input
	// would make the trade infeasible at the quoted output.
	if new(big.Int).Mul(amountIn, denominator).Cmp(numerator) != 0 {
		amountIn.Add(amountIn, big.NewInt(1))
	}
	return amountIn
}

func reservesOf(p *types.Pool) (*big.Int, *big.Int) {
	if p.Protocol == types.ProtocolV2 {
		return p.Reserve0, p.Reserve1
	}
	// V3/V4 fixture: treat Liquidity as both-side reserves so the same
	// constant-product formula produces a plausible price.
	return p.Liquidity, p.Liquidity
}

// walkForward prices a full path for EXACT_IN: amountIn in, tracing through
// every pool in order.
func walkForward(path []*types.Pool, tokenIn types.Address, amountIn *big.Int) *big.Int {
	cur := amountIn
	curToken := tokenIn
	for _, pool := range path {
		reserveIn, reserveOut, ok := pool.Reserves(curToken)
		if !ok || reserveIn == nil || reserveOut == nil {
			// V3/V4 pools carry no reserve fields even when the token match
			// succeeds; fall back to the liquidity stand-in.
			r0, r1 := reservesOf(pool)
			reserveIn, reserveOut = r0, r1
		}
		cur = poolOutput(reserveIn, reserveOut, cur)
		if other, ok := pool.OtherToken(curToken); ok {
			curToken = other.Address
		}
		if cur.Sign() == 0 {
			return big.NewInt(0)
		}
	}
	return cur
}

// walkBackward prices a full path for EXACT_OUT: the path is walked in
// reverse, solving each pool for the input needed to hit the next hop's
// required input (ending at the route's own amountIn).
func walkBackward(path []*types.Pool, tokenOut types.Address, amountOut *big.Int) *big.Int {
	cur := amountOut
	curToken := tokenOut
	for i := len(path) - 1; i >= 0; i-- {
		pool := path[i]
		// pool.Reserves(curToken) returns (reserveOf(curToken), reserveOf(other));
		// poolInput wants (reserveIn, reserveOut) with curToken as the out side.
		reserveOut, reserveIn, ok := pool.Reserves(curToken)
		if !ok || reserveIn == nil || reserveOut == nil {
			r0, r1 := reservesOf(pool)
			reserveOut, reserveIn = r0, r1
		}
		cur = poolInput(reserveIn, reserveOut, cur)
		if other, ok := pool.OtherToken(curToken); ok {
			curToken = other.Address
		}
		if cur.Sign() == 0 {
			return big.NewInt(0)
		}
	}
	return cur
}

// FetchQuotes prices every percentage-tagged route independently: each
// route's own slice of the total trade amount is floor(amount*pct/100),
// and the route's own path is walked forward (EXACT_IN) or backward
// (EXACT_OUT) to produce the QuoteBasic.Amount §6 expects.
func (f *QuoteFetcher) FetchQuotes(ctx context.Context, chainID int64, in, out *types.Token, amount *big.Int, routes []*types.Route, tradeType types.TradeType, tags ...string) ([]*types.QuoteBasic, error) {
	quotes := make([]*types.QuoteBasic, 0, len(routes))
	for _, route := range routes {
		if len(route.Path) == 0 {
			continue
		}
		share := new(big.Int).Mul(amount, big.NewInt(int64(route.Percentage)))
		share.Div(share, big.NewInt(100))
		if share.Sign() <= 0 {
			continue
		}

		var result *big.Int
		if tradeType == types.ExactOut {
			result = walkBackward(route.Path, out.Address, share)
		} else {
			result = walkForward(route.Path, in.Address, share)
		}
		if result.Sign() <= 0 {
			continue
		}
		quotes = append(quotes, &types.QuoteBasic{Route: route, Amount: result})
	}
	return quotes, nil
}

var _ ports.QuoteFetcher = (*QuoteFetcher)(nil)
