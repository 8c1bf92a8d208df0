package types

import (
	"encoding/json"
	"math/big"
)

// ResponseError is the §6/§7 error envelope.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PoolView is the response-side rendering of a pool within a route.
type PoolView struct {
	Type        Protocol `json:"type"`
	Address     Address  `json:"address,omitempty"`
	TokenIn     Address  `json:"tokenIn"`
	TokenOut    Address  `json:"tokenOut"`
	AmountIn    *big.Int `json:"amountIn"`
	AmountOut   *big.Int `json:"amountOut"`
	Reserve0    *big.Int `json:"reserve0,omitempty"`
	Reserve1    *big.Int `json:"reserve1,omitempty"`
	Fee         *int     `json:"fee,omitempty"`
	TickSpacing *int     `json:"tickSpacing,omitempty"`
	Hooks       Address  `json:"hooks,omitempty"`
}

type poolViewWire struct {
	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`
	Reserve0  string `json:"reserve0,omitempty"`
	Reserve1  string `json:"reserve1,omitempty"`
	*poolViewAlias
}

type poolViewAlias PoolView

func (p *PoolView) MarshalJSON() ([]byte, error) {
	w := poolViewWire{
		AmountIn:      bigOrZero(p.AmountIn),
		AmountOut:     bigOrZero(p.AmountOut),
		poolViewAlias: (*poolViewAlias)(p),
	}
	if p.Reserve0 != nil {
		w.Reserve0 = p.Reserve0.String()
	}
	if p.Reserve1 != nil {
		w.Reserve1 = p.Reserve1.String()
	}
	return json.Marshal(w)
}

// RouteView is one route as it appears in a response.
type RouteView struct {
	Pools []*PoolView `json:"pools"`
}

// QuoteResponse is the §6 abstract response surface.
type QuoteResponse struct {
	QuoteAmount         *big.Int     `json:"quoteAmount,omitempty"`
	QuoteGasAdjusted    *big.Int     `json:"quoteGasAdjusted,omitempty"`
	GasUseEstimateQuote *big.Int     `json:"gasUseEstimateQuote,omitempty"`
	PriceImpact         string       `json:"priceImpact,omitempty"`
	Route               []*RouteView `json:"route,omitempty"`
	HitsCachedRoutes    bool         `json:"hitsCachedRoutes"`

	PortionBips           *int64   `json:"portionBips,omitempty"`
	PortionRecipient      string   `json:"portionRecipient,omitempty"`
	PortionAmount         *big.Int `json:"portionAmount,omitempty"`
	PortionAmountDecimals int      `json:"portionAmountDecimals,omitempty"`

	MethodParameters *MethodParameters `json:"methodParameters,omitempty"`

	SimulationStatus      SimulationStatus `json:"simulationStatus,omitempty"`
	SimulationError       bool             `json:"simulationError,omitempty"`
	SimulationDescription string           `json:"simulationDescription,omitempty"`

	Error *ResponseError `json:"error,omitempty"`
}

type quoteResponseWire struct {
	QuoteAmount         string `json:"quoteAmount,omitempty"`
	QuoteGasAdjusted    string `json:"quoteGasAdjusted,omitempty"`
	GasUseEstimateQuote string `json:"gasUseEstimateQuote,omitempty"`
	PortionAmount       string `json:"portionAmount,omitempty"`
	*quoteResponseAlias
}

type quoteResponseAlias QuoteResponse

func (q *QuoteResponse) MarshalJSON() ([]byte, error) {
	w := quoteResponseWire{quoteResponseAlias: (*quoteResponseAlias)(q)}
	if q.QuoteAmount != nil {
		w.QuoteAmount = q.QuoteAmount.String()
	}
	if q.QuoteGasAdjusted != nil {
		w.QuoteGasAdjusted = q.QuoteGasAdjusted.String()
	}
	if q.GasUseEstimateQuote != nil {
		w.GasUseEstimateQuote = q.GasUseEstimateQuote.String()
	}
	if q.PortionAmount != nil {
		w.PortionAmount = q.PortionAmount.String()
	}
	return json.Marshal(w)
}

// NewErrorResponse builds a QuoteResponse carrying only an error (§7).
func NewErrorResponse(code int, message string) *QuoteResponse {
	return &QuoteResponse{Error: &ResponseError{Code: code, Message: message}}
}
