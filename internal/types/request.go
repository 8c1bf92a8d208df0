package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// TradeType fixes which side of the trade the requested amount describes.
type TradeType string

const (
	ExactIn  TradeType = "EXACT_IN"
	ExactOut TradeType = "EXACT_OUT"
)

// QuoteType selects the caching behavior of a request (§4.8).
type QuoteType string

const (
	QuoteFast  QuoteType = "FAST"
	QuoteFresh QuoteType = "FRESH"
)

// LambdaType distinguishes user-facing requests from background cache
// warmers (§3).
type LambdaType string

const (
	LambdaSync  LambdaType = "SYNC"
	LambdaAsync LambdaType = "ASYNC"
)

// QuoteRequest is the abstract request surface from §6.
type QuoteRequest struct {
	TokenInAddress    string       `json:"tokenInAddress"`
	TokenInChainID    int64        `json:"tokenInChainId"`
	TokenOutAddress   string       `json:"tokenOutAddress"`
	TokenOutChainID   int64        `json:"tokenOutChainId"`
	Amount            *big.Int     `json:"amount"`
	TradeType         TradeType    `json:"tradeType"`
	QuoteType         QuoteType    `json:"quoteType"`
	Protocols         string       `json:"protocols,omitempty"`
	SlippageTolerance *float64     `json:"slippageTolerance,omitempty"`
	Recipient         string       `json:"recipient,omitempty"`
	SimulateFromAddr  string       `json:"simulateFromAddress,omitempty"`
	Deadline          *int64       `json:"deadline,omitempty"`
	PortionBips       *int64       `json:"portionBips,omitempty"`
	PortionRecipient  string       `json:"portionRecipient,omitempty"`
	HooksOptions      HooksOptions `json:"hooksOptions,omitempty"`
	Mode              LambdaType   `json:"mode,omitempty"`
}

type quoteRequestWire struct {
	Amount string `json:"amount"`
	*Alias
}

// Alias avoids UnmarshalJSON/MarshalJSON recursion on QuoteRequest.
type Alias QuoteRequest

func (q *QuoteRequest) UnmarshalJSON(data []byte) error {
	aux := &quoteRequestWire{Alias: (*Alias)(q)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Amount == "" {
		return nil
	}
	amount, ok := new(big.Int).SetString(aux.Amount, 10)
	if !ok {
		return fmt.Errorf("invalid amount format: %s", aux.Amount)
	}
	q.Amount = amount
	return nil
}

func (q *QuoteRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(&quoteRequestWire{
		Amount: bigOrZero(q.Amount),
		Alias:  (*Alias)(q),
	})
}

// EffectiveHooks returns the request's hooks option, defaulting to
// HOOKS_INCLUSIVE per §4.1 step 3.
func (q *QuoteRequest) EffectiveHooks() HooksOptions {
	if q.HooksOptions == "" {
		return HooksInclusive
	}
	return q.HooksOptions
}

// WantsSimulation reports whether the request carries the three fields
// §4.9 requires to attempt simulation.
func (q *QuoteRequest) WantsSimulation() bool {
	return q.SimulateFromAddr != "" && q.Recipient != "" && q.SlippageTolerance != nil
}

// HasPortion reports whether portion (protocol fee) fields are present.
func (q *QuoteRequest) HasPortion() bool {
	return q.PortionBips != nil && *q.PortionBips > 0 && q.PortionRecipient != ""
}
