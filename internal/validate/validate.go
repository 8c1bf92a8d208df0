// Package validate enforces quote-request well-formedness and domain rules
// (§4.2). It is the teacher's inline checks in internal/api/handler.go's
// GetQuote (common.IsHexAddress, nil/positive amount, required fields)
// lifted out of the HTTP handler into a standalone component the
// orchestrator calls directly, so it's testable without an http.Request.
package validate

import (
	"math/big"
	"strconv"
	"strings"

	"dex-aggregator/internal/types"

	"github.com/ethereum/go-ethereum/common"
)

// SupportedChains is the closed set of chain ids the engine accepts.
// Populated by whoever constructs the validator (cmd/quoted reads it from
// config); tests construct their own.
type Validator struct {
	SupportedChains map[int64]bool
	MaxSlippagePct  float64
}

// New builds a Validator for the given supported chain ids. MaxSlippagePct
// defaults to 20, the ceiling fixed by §4.2.
func New(supportedChains []int64) *Validator {
	set := make(map[int64]bool, len(supportedChains))
	for _, id := range supportedChains {
		set[id] = true
	}
	return &Validator{SupportedChains: set, MaxSlippagePct: 20}
}

// Validate returns a non-nil *types.QuoteResponse carrying a 400 error when
// the request is invalid, or nil when the request is well-formed (§4.2).
func (v *Validator) Validate(req *types.QuoteRequest) *types.QuoteResponse {
	if !v.SupportedChains[req.TokenInChainID] {
		return reject("unsupported chain id: " + strconv.FormatInt(req.TokenInChainID, 10))
	}

	if req.SlippageTolerance != nil && *req.SlippageTolerance > v.MaxSlippagePct {
		return reject("slippage tolerance exceeds maximum allowed")
	}

	protocols := parseProtocols(req.Protocols)
	if len(protocols) == 1 && protocols[0] == types.ProtocolMixed {
		return reject("Mixed protocol cannot be specified explicitly")
	}

	if req.Amount == nil || req.Amount.Cmp(big.NewInt(0)) <= 0 {
		return reject("amount must be a positive integer")
	}

	if !isNativeSentinel(req.TokenInAddress) && !common.IsHexAddress(req.TokenInAddress) {
		return reject("invalid tokenInAddress")
	}
	if !isNativeSentinel(req.TokenOutAddress) && !common.IsHexAddress(req.TokenOutAddress) {
		return reject("invalid tokenOutAddress")
	}

	inLower := strings.ToLower(req.TokenInAddress)
	outLower := strings.ToLower(req.TokenOutAddress)
	if inLower == outLower {
		return reject("Token in and out must not be the same")
	}

	if req.Recipient != "" && !common.IsHexAddress(req.Recipient) {
		return reject("invalid recipient address")
	}

	if req.TokenInChainID != req.TokenOutChainID {
		return reject("token in and out chain ids must match")
	}

	return nil
}

// ValidateWrappedCollision additionally rejects requests whose input and
// output tokens resolve to the same wrapped address — this can only be
// checked after currency resolution (§4.1 step 2), so it's a distinct call
// from Validate, which runs before resolution.
func ValidateWrappedCollision(inWrapped, outWrapped types.Address) *types.QuoteResponse {
	if inWrapped.Equal(outWrapped) {
		return reject("Token in and out must not be the same")
	}
	return nil
}

func reject(message string) *types.QuoteResponse {
	return types.NewErrorResponse(400, message)
}

// isNativeSentinel mirrors mocks.Tokens.SearchForToken's own recognition of
// the native-currency sentinel (§4.1 step 2), so a native-ETH quote request
// reaches currency resolution instead of being rejected as a malformed
// address here.
func isNativeSentinel(address string) bool {
	return address == "" || address == "ETH" || address == "0x0000000000000000000000000000000000000000"
}

func parseProtocols(csv string) []types.Protocol {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]types.Protocol, 0, len(parts))
	for _, p := range parts {
		out = append(out, types.Protocol(strings.ToUpper(strings.TrimSpace(p))))
	}
	return out
}
