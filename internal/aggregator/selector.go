package aggregator

import (
	"math/big"
	"sort"

	"dex-aggregator/internal/types"
)

// validityNumerator/validityDenominator express the §4.4 bound: an adjustment is valid iff
// |original - adjusted| <= original * 30%.
const validityNumerator = 30
const validityDenominator = 100

// rankedSplit bundles a split with its precomputed original/adjusted
// amounts, following the teacher's findOptimalPath idiom of sorting a
// slice of precomputed comparables rather than re-deriving them per
// comparison.
type rankedSplit struct {
	split    *types.QuoteSplit
	original *big.Int
	adjusted *big.Int
	gasWei   *big.Int
}

// SelectBest ranks splits per §4.4: gas-adjusted amount when every split's
// adjustment validates, otherwise raw amount; descending for EXACT_IN,
// ascending for EXACT_OUT; ties broken by lower total gas cost in wei.
// Returns the first topN.
func SelectBest(splits []*types.QuoteSplit, tradeType types.TradeType, topN int) []*types.QuoteSplit {
	if len(splits) == 0 {
		return nil
	}

	ranked := make([]rankedSplit, 0, len(splits))
	allValid := true
	for _, s := range splits {
		original := s.TotalAmount()
		adjusted := s.GasAdjustedAmount(tradeType)
		if !isValidAdjustment(original, adjusted) {
			allValid = false
		}
		ranked = append(ranked, rankedSplit{
			split:    s,
			original: original,
			adjusted: adjusted,
			gasWei:   s.TotalGasCostWei(),
		})
	}

	ascending := tradeType == types.ExactOut

	sort.SliceStable(ranked, func(i, j int) bool {
		var a, b *big.Int
		if allValid {
			a, b = ranked[i].adjusted, ranked[j].adjusted
		} else {
			a, b = ranked[i].original, ranked[j].original
		}
		cmp := a.Cmp(b)
		if cmp == 0 {
			// Tie-break: lower total gas cost in wei wins regardless of
			// trade direction; still-equal splits prefer fewer routes.
			gasCmp := ranked[i].gasWei.Cmp(ranked[j].gasWei)
			if gasCmp != 0 {
				return gasCmp < 0
			}
			return len(ranked[i].split.Quotes) < len(ranked[j].split.Quotes)
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	if topN <= 0 || topN > len(ranked) {
		topN = len(ranked)
	}

	out := make([]*types.QuoteSplit, topN)
	for i := 0; i < topN; i++ {
		out[i] = ranked[i].split
	}
	return out
}

// isValidAdjustment implements the §4.4 per-split validity predicate.
func isValidAdjustment(original, adjusted *big.Int) bool {
	if original.Sign() <= 0 {
		return false
	}
	diff := new(big.Int).Sub(original, adjusted)
	diff.Abs(diff)
	bound := new(big.Int).Mul(original, big.NewInt(validityNumerator))
	bound.Div(bound, big.NewInt(validityDenominator))
	return diff.Cmp(bound) <= 0
}
