// Package simulate drives the §4.9 simulator orchestration loop: a
// strictly sequential pass over ranked QuoteSplits, because each attempt's
// outcome (and whether it captured a fallback swap_info) depends on
// attempt order — unlike gas estimation or quote fetching, this stage
// deliberately does not fan out concurrently.
package simulate

import (
	"context"
	"errors"
	"math/big"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

// ErrAllSimulationsFailed is returned when every ranked split failed to
// simulate and none of them even captured a fallback swap_info — the
// caller maps this to a 404 per §4.1 step 9.
var ErrAllSimulationsFailed = errors.New("simulate: all simulation attempts failed with no fallback swap info")

// Loop runs the serialized simulation attempts over ranked splits.
type Loop struct {
	Simulator ports.Simulator
}

// New builds a Loop around the given Simulator collaborator.
func New(simulator ports.Simulator) *Loop {
	return &Loop{Simulator: simulator}
}

// Run attempts simulate() against each ranked split in order, stopping at
// the first SUCCESS. amount is the request's anchor quantity (input for
// EXACT_IN, desired output for EXACT_OUT); each attempt fills in the other
// side from that split's own quoted total, since splits further down the
// ranking quote different outcomes. If every attempt fails but at least
// one captured trade-build output (swap_info), the best-ranked split is
// returned annotated with a FAILED status, the fixed "All simulation
// attempts failed" description, and the first captured swap_info as
// fallback method parameters. If no attempt ever captured swap_info,
// ErrAllSimulationsFailed is returned.
func (l *Loop) Run(ctx context.Context, chainID int64, opts ports.SwapOptions, splits []*types.QuoteSplit, in, out *types.Token, amount *big.Int, tradeType types.TradeType, gasPriceWei *uint64, block *int64) (*types.QuoteSplit, error) {
	if len(splits) == 0 {
		return nil, ErrAllSimulationsFailed
	}

	var firstSwapInfo *types.SwapInfo

	for _, split := range splits {
		inputAmount, expectedAmount := amount, split.TotalAmount()
		if tradeType == types.ExactOut {
			inputAmount, expectedAmount = split.TotalAmount(), amount
		}
		result, err := l.Simulator.Simulate(ctx, chainID, opts, split, in, out, inputAmount, expectedAmount, gasPriceWei, block)
		if err != nil || result == nil {
			continue
		}

		if firstSwapInfo == nil && result.SwapInfo != nil {
			firstSwapInfo = result.SwapInfo
		}

		if result.SimulationResult != nil && result.SimulationResult.Status == types.SimulationSuccess {
			return result, nil
		}
	}

	if firstSwapInfo == nil {
		return nil, ErrAllSimulationsFailed
	}

	fallback := splits[0]
	fallback.SwapInfo = firstSwapInfo
	fallback.SimulationResult = &types.SimulationResult{
		Status:      types.SimulationFailed,
		Description: "All simulation attempts failed",
	}
	return fallback, nil
}
