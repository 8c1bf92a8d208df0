package portion

import (
	"math/big"
	"testing"

	"dex-aggregator/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeQuote(pct int, amount int64) *types.QuoteBasic {
	route := types.NewRoute([]*types.Pool{{Protocol: types.ProtocolV2, Address: "0xpool"}}, pct)
	return &types.QuoteBasic{Route: route, Amount: big.NewInt(amount)}
}

// Mirrors spec scenario 3: EXACT_IN, portion_bips=50, quote_amount=1_234_567_890,
// route split 60/40.
func TestApplyExactInScenarioThree(t *testing.T) {
	split := &types.QuoteSplit{
		Quotes: []*types.QuoteBasic{
			routeQuote(60, 740_740_734),
			routeQuote(40, 493_827_156),
		},
	}

	portionTotal := ApplyExactIn(split, 50)
	require.Equal(t, big.NewInt(6_172_839), portionTotal)

	assert.Equal(t, big.NewInt(737_037_031), split.Quotes[0].Amount)

	// The per-route shares must sum exactly to portionTotal, and the
	// resulting amounts must sum exactly to quote_amount - portionTotal —
	// the §4.7 remainder-to-last-route invariant.
	sumAmounts := new(big.Int).Add(split.Quotes[0].Amount, split.Quotes[1].Amount)
	expectedSum := new(big.Int).Sub(big.NewInt(1_234_567_890), portionTotal)
	assert.Equal(t, expectedSum, sumAmounts)
}

func TestApplyExactInNoPortionWhenBipsZero(t *testing.T) {
	split := &types.QuoteSplit{Quotes: []*types.QuoteBasic{routeQuote(100, 1000)}}
	portionTotal := ApplyExactIn(split, 0)
	assert.Equal(t, big.NewInt(0), portionTotal)
	assert.Equal(t, big.NewInt(1000), split.Quotes[0].Amount)
}

func TestApplyExactInSingleRouteTakesEntirePortion(t *testing.T) {
	split := &types.QuoteSplit{Quotes: []*types.QuoteBasic{routeQuote(100, 1_234_567_890)}}
	portionTotal := ApplyExactIn(split, 50)
	assert.Equal(t, big.NewInt(6_172_839), portionTotal)
	assert.Equal(t, new(big.Int).Sub(big.NewInt(1_234_567_890), portionTotal), split.Quotes[0].Amount)
}

func TestApplyExactInThreeWaySplitRemainderGoesToLast(t *testing.T) {
	split := &types.QuoteSplit{
		Quotes: []*types.QuoteBasic{
			routeQuote(33, 330_000_000),
			routeQuote(34, 340_000_000),
			routeQuote(33, 330_000_000),
		},
	}
	portionTotal := ApplyExactIn(split, 100)
	sum := big.NewInt(0)
	for _, q := range split.Quotes {
		sum.Add(sum, q.Amount)
	}
	expected := new(big.Int).Sub(big.NewInt(1_000_000_000), portionTotal)
	assert.Equal(t, expected, sum)
}

// Mirrors spec scenario 4: EXACT_OUT, portion_bips=50, input=10^18.
func TestApplyExactOutScenarioFour(t *testing.T) {
	input, _ := new(big.Int).SetString("1000000000000000000", 10)
	portionTotal := ApplyExactOut(input, 50)
	expected, _ := new(big.Int).SetString("5000000000000000", 10)
	assert.Equal(t, expected, portionTotal)
}

func TestApplyExactOutZeroWhenBipsMissing(t *testing.T) {
	assert.Equal(t, big.NewInt(0), ApplyExactOut(big.NewInt(1000), 0))
}
