package mocks

import (
	"context"
	"fmt"

	"dex-aggregator/internal/ports"
)

// Chains is the ports.ChainRepository demo implementation: a fixed table of
// the chain ids the validator's default config accepts (§4.2), flagging
// Arbitrum/L2 chains so internal/gas can exercise the §4.5 step-3 L1-gas-data
// branch.
type Chains struct {
	byID map[int64]*ports.Chain
}

// NewChains seeds mainnet, Optimism, Polygon, Arbitrum and Base.
func NewChains() *Chains {
	return &Chains{byID: map[int64]*ports.Chain{
		1:     {ID: 1, Name: "mainnet", NativeWrapped: weth},
		10:    {ID: 10, Name: "optimism", IsL2: true, NativeWrapped: weth},
		137:   {ID: 137, Name: "polygon", IsL2: true, NativeWrapped: weth},
		42161: {ID: 42161, Name: "arbitrum", IsL2: true, IsArbitrum: true, NativeWrapped: weth},
		8453:  {ID: 8453, Name: "base", IsL2: true, NativeWrapped: weth},
	}}
}

func (c *Chains) GetChain(ctx context.Context, chainID int64) (*ports.Chain, error) {
	chain, ok := c.byID[chainID]
	if !ok {
		return nil, fmt.Errorf("mocks: unsupported chain id %d", chainID)
	}
	return chain, nil
}

var _ ports.ChainRepository = (*Chains)(nil)
