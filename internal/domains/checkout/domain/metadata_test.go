package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines(n int) []LineItem {
	lines := make([]LineItem, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, LineItem{
			ProductID: fmt.Sprintf("0b7c6a58-5d7e-4c4f-9d1e-%012d", i),
			Quantity:  i + 1,
			UnitPrice: decimal.RequireFromString("29.99"),
		})
	}
	return lines
}

func TestPackMetadata_SingleValue(t *testing.T) {
	meta, err := PackMetadata("user-1", "EUR", sampleLines(2), MetadataLimits{ValueLimit: 500, MaxParts: 10})
	require.NoError(t, err)
	assert.Equal(t, "user-1", meta[MetaUserID])
	assert.Equal(t, "EUR", meta[MetaCurrency])
	assert.Contains(t, meta[MetaItems], `"q":2`)

	decoded, err := UnpackMetadata(meta)
	require.NoError(t, err)
	assert.Equal(t, "user-1", decoded.UserID)
	require.Len(t, decoded.Items, 2)
	assert.True(t, decoded.Items[1].UnitPrice.Equal(decimal.RequireFromString("29.99")))
}

func TestPackMetadata_SplitsAcrossKeys(t *testing.T) {
	lines := sampleLines(12)
	meta, err := PackMetadata("user-1", "USD", lines, MetadataLimits{ValueLimit: 256, MaxParts: 12})
	require.NoError(t, err)
	assert.Empty(t, meta[MetaItems])
	for key, value := range meta {
		assert.LessOrEqual(t, len(value), 256, key)
	}

	decoded, err := UnpackMetadata(meta)
	require.NoError(t, err)
	require.Len(t, decoded.Items, 12)
	assert.Equal(t, lines[11].ProductID, decoded.Items[11].ProductID)
	assert.Equal(t, 12, decoded.Items[11].Quantity)
}

func TestPackMetadata_TooLarge(t *testing.T) {
	_, err := PackMetadata("user-1", "USD", sampleLines(40), MetadataLimits{ValueLimit: 255, MaxParts: 1})
	assert.ErrorIs(t, err, ErrSnapshotTooLarge)
}

func TestUnpackMetadata_Malformed(t *testing.T) {
	_, err := UnpackMetadata(map[string]string{MetaItems: "not json"})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = UnpackMetadata(map[string]string{metaParts: "2", "items_0": "[]"})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = UnpackMetadata(map[string]string{MetaItems: `[{"id":"p","q":1,"p":"abc"}]`})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestGatewayEvent_Validate(t *testing.T) {
	event := GatewayEvent{
		Provider:  "stripe",
		Kind:      EventPaymentCompleted,
		SessionID: "cs_1",
		UserID:    "u1",
		Items:     []EventItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
	}
	require.NoError(t, event.Validate())
	assert.Equal(t, "stripe:cs_1", event.IdempotencyKey())

	noItems := event
	noItems.Items = nil
	assert.ErrorIs(t, noItems.Validate(), ErrMalformedEvent)

	ignored := GatewayEvent{Kind: EventIgnored}
	assert.NoError(t, ignored.Validate())

	noUser := event
	noUser.UserID = strings.Repeat(" ", 3)
	assert.ErrorIs(t, noUser.Validate(), ErrMalformedEvent)
}

func TestSnapshot_AmountMinorRoundsPerLine(t *testing.T) {
	snapshot := Snapshot{Lines: []LineItem{
		{ProductID: "a", Quantity: 3, UnitPrice: decimal.RequireFromString("29.99")},
		{ProductID: "b", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
	}}
	assert.True(t, snapshot.Total().Equal(decimal.RequireFromString("99.97")))
	assert.Equal(t, int64(9997), snapshot.AmountMinor("USD"))
	// 29.99 * 0.91 = 27.2909 -> 27.29 per unit; 10 * 0.91 = 9.10
	assert.Equal(t, int64(2729*3+910), snapshot.AmountMinor("EUR"))
}
