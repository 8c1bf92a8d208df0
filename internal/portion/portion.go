// Package portion implements the protocol-fee ("portion") arithmetic of
// §4.7: basis-point math over arbitrary-precision integers, apportioned
// across a split's routes with the remainder assigned to the last route so
// the parts sum to the whole exactly.
package portion

import (
	"math/big"

	"dex-aggregator/internal/types"
)

var bips10000 = big.NewInt(10000)
var pct100 = big.NewInt(100)

// ApplyExactIn deducts the portion from an EXACT_IN split's per-route
// output amounts in place and returns the total portion amount. The total
// is floor(total_quote_amount * bips / 10000); each non-last route is
// assigned floor(portion_total * route.percentage / 100), and the last
// route absorbs whatever remainder is left so the per-route shares sum to
// portion_total exactly.
func ApplyExactIn(split *types.QuoteSplit, bips int64) *big.Int {
	if split == nil || len(split.Quotes) == 0 || bips <= 0 {
		return big.NewInt(0)
	}

	portionTotal := bipsOf(split.TotalAmount(), bips)
	if portionTotal.Sign() == 0 {
		return portionTotal
	}

	assigned := big.NewInt(0)
	last := len(split.Quotes) - 1
	for i, q := range split.Quotes {
		if q.Route == nil {
			continue
		}
		var share *big.Int
		if i == last {
			share = new(big.Int).Sub(portionTotal, assigned)
		} else {
			share = pctOf(portionTotal, q.Route.Percentage)
			assigned.Add(assigned, share)
		}
		q.Amount = new(big.Int).Sub(q.Amount, share)
	}
	return portionTotal
}

// ApplyExactOut computes the portion owed on an EXACT_OUT trade: floor of
// the request's amount (the desired output) times bips over 10000. Unlike EXACT_IN, this
// amount is added to the user-facing amount_out at response-assembly time
// rather than apportioned across routes (§4.7).
func ApplyExactOut(inputAmount *big.Int, bips int64) *big.Int {
	if inputAmount == nil || bips <= 0 {
		return big.NewInt(0)
	}
	return bipsOf(inputAmount, bips)
}

func bipsOf(amount *big.Int, bips int64) *big.Int {
	v := new(big.Int).Mul(amount, big.NewInt(bips))
	return v.Div(v, bips10000)
}

func pctOf(amount *big.Int, pct int) *big.Int {
	v := new(big.Int).Mul(amount, big.NewInt(int64(pct)))
	return v.Div(v, pct100)
}
