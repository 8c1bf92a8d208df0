// Package respond assembles the final QuoteResponse from a ranked,
// (optionally simulated) QuoteSplit: price-impact clamping, gas-adjusted
// amount, integer per-route amount distribution, V4 fake-pool filtering,
// and portion-fee rendering (§4.10). It applies the §4.7 portion math as
// the last step before rendering: the quote and gas-adjusted totals are
// computed first, then the EXACT_IN deduction rewrites each route's output
// amount in the split in place.
package respond

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"dex-aggregator/internal/portion"
	"dex-aggregator/internal/types"
)

// FormatPriceImpact renders a price-impact percentage per §4.10: clamp to
// [-100, 100], two decimal places, and "0" for NaN/Inf (the stand-in for
// "stringification throws").
func FormatPriceImpact(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "0"
	}
	clamped := pct
	if clamped > 100 {
		clamped = 100
	}
	if clamped < -100 {
		clamped = -100
	}
	return strconv.FormatFloat(clamped, 'f', 2, 64)
}

// DistributeInteger splits total across len(percentages) parts using
// floor(total * pct / 100) for every part but the last, which absorbs the
// remainder so the parts sum to total exactly (§4.10).
func DistributeInteger(total *big.Int, percentages []int) []*big.Int {
	n := len(percentages)
	out := make([]*big.Int, n)
	if n == 0 {
		return out
	}
	assigned := big.NewInt(0)
	for i, pct := range percentages {
		if i == n-1 {
			out[i] = new(big.Int).Sub(total, assigned)
			continue
		}
		share := new(big.Int).Mul(total, big.NewInt(int64(pct)))
		share.Div(share, big.NewInt(100))
		out[i] = share
		assigned.Add(assigned, share)
	}
	return out
}

// FilterFakeV4 strips the internal ETH<->WETH bridging pseudo-pool from a
// pool slice, preserving order (§4.10).
func FilterFakeV4(pools []*types.Pool) []*types.Pool {
	out := make([]*types.Pool, 0, len(pools))
	for _, p := range pools {
		if p.IsFakeV4Pool() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AssembleResponse builds the QuoteResponse for a selected (and optionally
// simulated) split. req.Amount is the trade's anchor quantity: the total
// input for EXACT_IN, the desired output for EXACT_OUT (§6 request
// surface). hitsCachedRoutes reflects whether any route in split was
// sourced from the cache and survived ranking.
func AssembleResponse(req *types.QuoteRequest, split *types.QuoteSplit, hitsCachedRoutes bool) *types.QuoteResponse {
	if split == nil || len(split.Quotes) == 0 {
		return types.NewErrorResponse(404, "No valid quotes found")
	}

	resp := &types.QuoteResponse{
		QuoteAmount:         split.TotalAmount(),
		QuoteGasAdjusted:    split.GasAdjustedAmount(req.TradeType),
		GasUseEstimateQuote: split.TotalGasCostInQuoteToken(),
		HitsCachedRoutes:    hitsCachedRoutes,
	}

	// Absent swap info means no trade was built, so there is no computed
	// price impact to render: "0", not "0.00" (§4.10).
	resp.PriceImpact = "0"
	if split.SwapInfo != nil {
		resp.PriceImpact = FormatPriceImpact(split.SwapInfo.PriceImpact)
		resp.MethodParameters = split.SwapInfo.MethodParameters
	}

	if split.SimulationResult != nil {
		resp.SimulationStatus = split.SimulationResult.Status
		resp.SimulationDescription = split.SimulationResult.Description
		resp.SimulationError = split.SimulationResult.Status != types.SimulationUnattempted &&
			split.SimulationResult.Status != types.SimulationSuccess
	}

	var portionTotal *big.Int
	if req.HasPortion() {
		if req.TradeType == types.ExactOut {
			portionTotal = portion.ApplyExactOut(req.Amount, *req.PortionBips)
		} else {
			portionTotal = portion.ApplyExactIn(split, *req.PortionBips)
		}
		resp.PortionBips = req.PortionBips
		resp.PortionRecipient = req.PortionRecipient
		resp.PortionAmount = portionTotal
	}

	resp.Route = buildRouteViews(req, split, portionTotal)
	if resp.PortionAmount != nil {
		resp.PortionAmountDecimals = portionDecimals(split, resp.Route)
	}

	return resp
}

// portionDecimals resolves the output token's decimals from the split's
// tokens-info snapshot. The portion is denominated in the output token for
// both trade directions: deducted from the quote for EXACT_IN, added to
// the requested output for EXACT_OUT. The final pool's token_out address
// carries the resolved (wrapped, for native) output address.
func portionDecimals(split *types.QuoteSplit, routes []*types.RouteView) int {
	for _, rv := range routes {
		if len(rv.Pools) == 0 {
			continue
		}
		if tok, ok := split.TokensInfo[rv.Pools[len(rv.Pools)-1].TokenOut]; ok {
			return tok.Decimals
		}
	}
	return 0
}

// entryToken picks the side of the first pool the path enters through: for
// multi-pool paths, the side NOT shared with the second pool; for a single
// pool, the side that isn't the requested output.
func entryToken(path []*types.Pool, out types.Address) types.Address {
	first := path[0]
	if len(path) > 1 {
		if _, ok := path[1].OtherToken(first.Token1.Address); ok {
			return first.Token0.Address
		}
		return first.Token1.Address
	}
	if first.Token0.Address.Equal(out) {
		return first.Token1.Address
	}
	return first.Token0.Address
}

func buildRouteViews(req *types.QuoteRequest, split *types.QuoteSplit, portionTotal *big.Int) []*types.RouteView {
	percentages := make([]int, len(split.Quotes))
	for i, q := range split.Quotes {
		if q.Route != nil {
			percentages[i] = q.Route.Percentage
		}
	}

	var outboundTotal *big.Int
	if req.TradeType == types.ExactOut {
		outboundTotal = new(big.Int).Set(req.Amount)
		if portionTotal != nil {
			outboundTotal.Add(outboundTotal, portionTotal)
		}
	} else {
		outboundTotal = req.Amount
	}

	var inboundShares, outboundShares []*big.Int
	if req.TradeType == types.ExactIn {
		inboundShares = DistributeInteger(req.Amount, percentages)
	} else {
		outboundShares = DistributeInteger(outboundTotal, percentages)
	}

	views := make([]*types.RouteView, len(split.Quotes))
	for i, q := range split.Quotes {
		if q.Route == nil {
			views[i] = &types.RouteView{}
			continue
		}

		visible := FilterFakeV4(q.Route.VisiblePath())
		pools := make([]*types.PoolView, 0, len(visible))
		cur := types.Address(strings.ToLower(req.TokenInAddress))
		if len(visible) > 0 {
			if _, ok := visible[0].OtherToken(cur); !ok {
				// Native inputs arrive as the "ETH" sentinel, which no pool
				// carries; walk from the path's own entry token instead.
				cur = entryToken(visible, types.Address(strings.ToLower(req.TokenOutAddress)))
			}
		}
		for _, p := range visible {
			other, ok := p.OtherToken(cur)
			pv := &types.PoolView{
				Type:      p.Protocol,
				Address:   p.Address,
				TokenIn:   cur,
				AmountIn:  big.NewInt(0),
				AmountOut: big.NewInt(0),
				Reserve0:  p.Reserve0,
				Reserve1:  p.Reserve1,
				Hooks:     p.Hooks,
			}
			if p.Fee != 0 {
				fee := p.Fee
				pv.Fee = &fee
			}
			if p.TickSpacing != 0 {
				ts := p.TickSpacing
				pv.TickSpacing = &ts
			}
			if ok {
				pv.TokenOut = other.Address
				cur = other.Address
			}
			pools = append(pools, pv)
		}

		if len(pools) > 0 {
			if req.TradeType == types.ExactIn {
				pools[0].AmountIn = inboundShares[i]
				pools[len(pools)-1].AmountOut = q.Amount
			} else {
				pools[0].AmountIn = q.Amount
				pools[len(pools)-1].AmountOut = outboundShares[i]
			}
		}

		views[i] = &types.RouteView{Pools: pools}
	}
	return views
}
