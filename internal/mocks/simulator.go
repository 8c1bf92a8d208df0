package mocks

import (
	"context"
	"fmt"
	"math/big"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

// Simulator is the ports.Simulator demo implementation: it "builds a
// trade" by rendering a fixed calldata placeholder and a flat fee-based
// price-impact estimate (see estimatePriceImpact), then always reports SUCCESS —
// there is no real chain to simulate against in this demo fixture.
type Simulator struct{}

func NewSimulator() *Simulator { return &Simulator{} }

func (s *Simulator) Simulate(ctx context.Context, chainID int64, opts ports.SwapOptions, split *types.QuoteSplit, in, out *types.Token, inputAmount, expectedAmount *big.Int, gasPriceWei *uint64, block *int64) (*types.QuoteSplit, error) {
	if split == nil {
		return nil, fmt.Errorf("mocks: nil split")
	}

	split.SwapInfo = &types.SwapInfo{
		TokenIn:     in.Address,
		TokenOut:    out.Address,
		InputAmount: inputAmount,
		PriceImpact: estimatePriceImpact(split),
		MethodParameters: &types.MethodParameters{
			To:       types.MustAddress("0x0000000000000000000000000000000000000001"),
			Calldata: "0x",
			Value:    "0",
		},
	}

	gasUsed := split.TotalGasCostWei()
	split.SimulationResult = &types.SimulationResult{
		EstimatedGasUsed:             gasUsed,
		EstimatedGasUsedInQuoteToken: split.TotalGasCostInQuoteToken(),
		Status:                       types.SimulationSuccess,
	}
	return split, nil
}

// estimatePriceImpact charges a flat 0.3 for every route with a non-empty
// path, weighted by the route's percentage share, and caps the sum at 100.
// Routes without a path contribute nothing; the protocol is not consulted.
func estimatePriceImpact(split *types.QuoteSplit) float64 {
	total := 0.0
	for _, q := range split.Quotes {
		if q.Route == nil || len(q.Route.Path) == 0 {
			continue
		}
		weight := float64(q.Route.Percentage) / 100.0
		total += weight * 0.3 // 0.3% swap fee is the dominant impact term in this fixture
	}
	if total > 100 {
		total = 100
	}
	return total
}

var _ ports.Simulator = (*Simulator)(nil)
