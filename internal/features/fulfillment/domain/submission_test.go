package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOn_MarshalsZeroFlagsExplicitly(t *testing.T) {
	submission := OrderSubmission{
		OrderNumber: "ORD-2001",
		Gateway:     GatewayPrepaid,
		AddOns: []AddOn{
			{BoxPacking: 0, GiftWrap: 0, RushOrder: 1},
		},
	}

	payload, err := json.Marshal(&submission)
	require.NoError(t, err)

	body := string(payload)
	assert.Contains(t, body, `"box_packing":0`)
	assert.Contains(t, body, `"gift_wrap":0`)
	assert.Contains(t, body, `"rush_order":1`)
	// An unused letter still stays off the wire.
	assert.NotContains(t, body, "custom_letter")
}

func TestAddOn_UnmarshalCoercesStringFlags(t *testing.T) {
	var addOn AddOn
	require.NoError(t, json.Unmarshal([]byte(`{"box_packing":"1","gift_wrap":0,"rush_order":""}`), &addOn))

	assert.Equal(t, FlexInt(1), addOn.BoxPacking)
	assert.Equal(t, FlexInt(0), addOn.GiftWrap)
	assert.Equal(t, FlexInt(0), addOn.RushOrder)
}
