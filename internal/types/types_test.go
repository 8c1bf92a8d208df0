package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressNormalization(t *testing.T) {
	addr, err := NewAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	require.NoError(t, err)
	assert.Equal(t, Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"), addr)

	_, err = NewAddress("not-an-address")
	assert.Error(t, err)

	nilAddr, err := NewAddress("")
	require.NoError(t, err)
	assert.True(t, nilAddr.IsNil())
}

func TestPoolIsFakeV4Pool(t *testing.T) {
	bridge := &Pool{Protocol: ProtocolV4, TickSpacing: 0}
	assert.True(t, bridge.IsFakeV4Pool())

	real := &Pool{Protocol: ProtocolV4, TickSpacing: 60}
	assert.False(t, real.IsFakeV4Pool())

	v2 := &Pool{Protocol: ProtocolV2}
	assert.False(t, v2.IsFakeV4Pool())
}

func TestRouteProtocolInference(t *testing.T) {
	path := []*Pool{{Protocol: ProtocolV2}, {Protocol: ProtocolV3}}
	r := NewRoute(path, 0)
	assert.Equal(t, ProtocolMixed, r.Protocol)
	assert.Equal(t, 100, r.Percentage)

	pureV2 := NewRoute([]*Pool{{Protocol: ProtocolV2}}, 40)
	assert.Equal(t, ProtocolV2, pureV2.Protocol)
	assert.Equal(t, 40, pureV2.Percentage)
}

func TestRouteVisiblePathFiltersFakeV4(t *testing.T) {
	r := &Route{Path: []*Pool{
		{Protocol: ProtocolV4, TickSpacing: 0},
		{Protocol: ProtocolV2, Address: "0xabc"},
	}}
	visible := r.VisiblePath()
	require.Len(t, visible, 1)
	assert.Equal(t, Address("0xabc"), visible[0].Address)
}

func TestQuoteBasicMarshalRoundTrip(t *testing.T) {
	q := &QuoteBasic{
		Route:  NewRoute([]*Pool{{Protocol: ProtocolV2, Address: "0xpool"}}, 100),
		Amount: big.NewInt(123456789),
		GasDetails: &GasDetails{
			GasPriceWei:         big.NewInt(1000),
			GasCostWei:          big.NewInt(21000000),
			GasCostEth:          0.000021,
			GasUse:              big.NewInt(21000),
			GasCostInQuoteToken: big.NewInt(5),
		},
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var decoded QuoteBasic
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, q.Amount.String(), decoded.Amount.String())
	assert.Equal(t, q.GasDetails.GasCostInQuoteToken.String(), decoded.GasDetails.GasCostInQuoteToken.String())
}

func TestQuoteSplitPercentageSum(t *testing.T) {
	split := &QuoteSplit{Quotes: []*QuoteBasic{
		{Route: &Route{Percentage: 60}, Amount: big.NewInt(60)},
		{Route: &Route{Percentage: 40}, Amount: big.NewInt(40)},
	}}
	assert.Equal(t, 100, split.PercentageSum())
	assert.Equal(t, big.NewInt(100).String(), split.TotalAmount().String())
}

func TestQuoteRequestAmountRoundTrip(t *testing.T) {
	bips := int64(50)
	req := &QuoteRequest{
		TokenInAddress:  "0xin",
		TokenOutAddress: "0xout",
		Amount:          big.NewInt(1000000000000000000),
		TradeType:       ExactIn,
		PortionBips:     &bips,
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded QuoteRequest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, req.Amount.String(), decoded.Amount.String())
	assert.Equal(t, ExactIn, decoded.TradeType)
}

func TestEffectiveHooksDefaultsInclusive(t *testing.T) {
	req := &QuoteRequest{}
	assert.Equal(t, HooksInclusive, req.EffectiveHooks())
	assert.False(t, req.EffectiveHooks().SkipPoolsForTokensCache())

	req.HooksOptions = HooksOnly
	assert.True(t, req.EffectiveHooks().SkipPoolsForTokensCache())
}

func TestCacheKeyNamespaceStable(t *testing.T) {
	k := CacheKey{ChainID: 1, TokenIn: "0xin", TokenOut: "0xout", TradeType: ExactIn, Bucket: Bucket1K}
	assert.Equal(t, k.Namespace(), k.Namespace())
	assert.Contains(t, k.Namespace(), string(Bucket1K))
}
