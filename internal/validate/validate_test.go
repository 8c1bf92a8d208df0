package validate

import (
	"math/big"
	"strings"
	"testing"

	"dex-aggregator/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *types.QuoteRequest {
	return &types.QuoteRequest{
		TokenInAddress:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		TokenInChainID:  1,
		TokenOutAddress: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		TokenOutChainID: 1,
		Amount:          big.NewInt(1000),
		TradeType:       types.ExactIn,
	}
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	v := New([]int64{1})
	assert.Nil(t, v.Validate(validRequest()))
}

func TestValidateRejectsUnsupportedChain(t *testing.T) {
	v := New([]int64{10})
	resp := v.Validate(validRequest())
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 400, resp.Error.Code)
}

func TestValidateRejectsExcessSlippage(t *testing.T) {
	v := New([]int64{1})
	req := validRequest()
	slip := 25.0
	req.SlippageTolerance = &slip
	resp := v.Validate(req)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.Error.Code)
}

func TestValidateRejectsMixedOnlyProtocol(t *testing.T) {
	v := New([]int64{1})
	req := validRequest()
	req.Protocols = "mixed"
	resp := v.Validate(req)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Error.Message, "Mixed protocol")
}

func TestValidateAllowsMixedAlongsideOthers(t *testing.T) {
	v := New([]int64{1})
	req := validRequest()
	req.Protocols = "v2,mixed"
	assert.Nil(t, v.Validate(req))
}

func TestValidateRejectsNonPositiveAmount(t *testing.T) {
	v := New([]int64{1})
	req := validRequest()
	req.Amount = big.NewInt(0)
	resp := v.Validate(req)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.Error.Code)
}

func TestValidateRejectsSameTokenCaseInsensitive(t *testing.T) {
	v := New([]int64{1})
	req := validRequest()
	req.TokenOutAddress = strings.ToLower(req.TokenInAddress)
	resp := v.Validate(req)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Error.Message, "must not be the same")
}

func TestValidateAcceptsNativeSentinelAddresses(t *testing.T) {
	v := New([]int64{1})
	req := validRequest()
	req.TokenInAddress = ""
	assert.Nil(t, v.Validate(req))

	req = validRequest()
	req.TokenOutAddress = "ETH"
	assert.Nil(t, v.Validate(req))
}

func TestValidateRejectsInvalidRecipient(t *testing.T) {
	v := New([]int64{1})
	req := validRequest()
	req.Recipient = "not-an-address"
	resp := v.Validate(req)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.Error.Code)
}

func TestValidateRejectsChainMismatch(t *testing.T) {
	v := New([]int64{1, 10})
	req := validRequest()
	req.TokenOutChainID = 10
	resp := v.Validate(req)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.Error.Code)
}

func TestValidateWrappedCollision(t *testing.T) {
	assert.NotNil(t, ValidateWrappedCollision("0xweth", "0xweth"))
	assert.Nil(t, ValidateWrappedCollision("0xweth", "0xusdc"))
}
