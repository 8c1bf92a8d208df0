package types

import "math/big"

// Protocol tags a pool or a route by AMM design.
type Protocol string

const (
	ProtocolV2    Protocol = "V2"
	ProtocolV3    Protocol = "V3"
	ProtocolV4    Protocol = "V4"
	ProtocolMixed Protocol = "MIXED"
)

// HooksOptions controls which V4 pools a route search considers.
type HooksOptions string

const (
	HooksInclusive HooksOptions = "HOOKS_INCLUSIVE"
	HooksNone      HooksOptions = "NO_HOOKS"
	HooksOnly      HooksOptions = "HOOKS_ONLY"
)

// SkipPoolsForTokensCache reports the §4.1 step-3 derivation:
// hooks != HOOKS_INCLUSIVE implies the tokens-cache lookup is skipped.
func (h HooksOptions) SkipPoolsForTokensCache() bool {
	return h != HooksInclusive && h != ""
}

// FakeV4TickSpacing is the sentinel tick spacing marking the internal
// ETH<->WETH bridging pseudo-pool; such pools are injected by the router to
// let native-currency routes traverse the same graph as wrapped routes, and
// are stripped from any response (§4.10).
const FakeV4TickSpacing = 0

// Pool is a tagged union over the three supported AMM designs. Only the
// fields relevant to Protocol are populated; the rest are zero-valued.
// Pool identity is (Protocol, Address) for V2/V3, (Protocol, PoolID) for V4.
type Pool struct {
	Protocol Protocol `json:"protocol"`
	Address  Address  `json:"address,omitempty"`

	Token0 Token `json:"token0"`
	Token1 Token `json:"token1"`

	// V2
	Reserve0 *big.Int `json:"reserve0,omitempty"`
	Reserve1 *big.Int `json:"reserve1,omitempty"`

	// V3 / V4
	Fee          int      `json:"fee,omitempty"`
	Liquidity    *big.Int `json:"liquidity,omitempty"`
	SqrtPriceX96 *big.Int `json:"sqrtPriceX96,omitempty"`
	TickCurrent  int      `json:"tickCurrent,omitempty"`

	// V4 only
	TickSpacing int     `json:"tickSpacing,omitempty"`
	Hooks       Address `json:"hooks,omitempty"`
	PoolID      string  `json:"poolId,omitempty"`
}

// IsFakeV4Pool reports whether this pool is the internal ETH<->WETH bridge
// sentinel that must never reach a response (§4.10, §9 glossary).
func (p *Pool) IsFakeV4Pool() bool {
	return p.Protocol == ProtocolV4 && p.TickSpacing == FakeV4TickSpacing
}

// IdentityKey returns the value used for pool-identity comparisons within a
// single combination (no duplicate pool across quotes of the same split).
func (p *Pool) IdentityKey() string {
	if p.Protocol == ProtocolV4 {
		return string(p.Protocol) + ":" + p.PoolID
	}
	return string(p.Protocol) + ":" + string(p.Address)
}

// OtherToken returns the counterpart token given one side of the pool, and
// whether tokenIn was found on either side.
func (p *Pool) OtherToken(in Address) (Token, bool) {
	switch {
	case p.Token0.Address.Equal(in):
		return p.Token1, true
	case p.Token1.Address.Equal(in):
		return p.Token0, true
	default:
		return Token{}, false
	}
}

// Reserves returns (reserveIn, reserveOut) for tokenIn, only meaningful for
// V2 pools.
func (p *Pool) Reserves(tokenIn Address) (in, out *big.Int, ok bool) {
	switch {
	case p.Token0.Address.Equal(tokenIn):
		return p.Reserve0, p.Reserve1, true
	case p.Token1.Address.Equal(tokenIn):
		return p.Reserve1, p.Reserve0, true
	default:
		return nil, nil, false
	}
}
