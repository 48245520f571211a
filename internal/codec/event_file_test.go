package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

func TestEventRoundTrip(t *testing.T) {
	events := []types.Event{
		{EvFlags: types.ExchEvent | types.LocalEvent | types.DepthEvent | types.BuyEvent, ExchTS: 100, LocalTS: 150, Px: 100.1, Qty: 2.5, OrderID: 0, Ival: 0, Fval: 0},
		{EvFlags: types.ExchEvent | types.TradeEvent | types.SellEvent, ExchTS: 200, LocalTS: 0, Px: 99.95, Qty: 1.0},
		{EvFlags: types.WithUserTag(101), ExchTS: 0, LocalTS: 300, Fval: 42.42, Ival: -7},
	}

	encoded, err := EncodeEventsToBytes(events)
	require.NoError(t, err)

	decoded, err := DecodeEvents(bytes.NewReader(encoded))
	require.NoError(t, err)

	assert.Equal(t, events, decoded)
}

func TestLatencyTableRoundTrip(t *testing.T) {
	rows := []LatencyRow{
		{ReqTS: 0, ExchTS: 1_000_000, RespTS: 3_000_000},
		{ReqTS: 10_000_000, ExchTS: 11_200_000, RespTS: 13_500_000},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeLatencyTable(&buf, rows))

	decoded, err := DecodeLatencyTable(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, rows, decoded)
}
