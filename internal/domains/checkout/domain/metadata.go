package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Metadata keys shared by every gateway.
const (
	MetaUserID   = "userId"
	MetaCurrency = "currency"
	MetaItems    = "items"
	metaParts    = "items_parts"
)

// MetadataLimits describes how much a gateway lets us attach to a session.
type MetadataLimits struct {
	// ValueLimit is the maximum length of one metadata value.
	ValueLimit int
	// MaxParts caps how many keys the items payload may be split across.
	MaxParts int
}

// SessionMetadata is what a session carries so a webhook can rebuild the order.
type SessionMetadata struct {
	UserID   string
	Currency string
	Items    []EventItem
}

type metadataItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"q"`
	Price    string `json:"p"`
}

// PackMetadata encodes the snapshot, splitting the items payload over numbered keys
// when it exceeds the gateway's per-value limit.
func PackMetadata(userID, currency string, lines []LineItem, limits MetadataLimits) (map[string]string, error) {
	encoded := make([]metadataItem, 0, len(lines))
	for _, line := range lines {
		encoded = append(encoded, metadataItem{
			ID:       line.ProductID,
			Quantity: line.Quantity,
			Price:    line.UnitPrice.StringFixed(2),
		})
	}
	payload, err := json.Marshal(encoded)
	if err != nil {
		return nil, err
	}
	meta := map[string]string{MetaUserID: userID, MetaCurrency: currency}
	if len(userID) > limits.ValueLimit {
		return nil, ErrSnapshotTooLarge
	}
	raw := string(payload)
	if len(raw) <= limits.ValueLimit {
		meta[MetaItems] = raw
		return meta, nil
	}
	parts := chunk(raw, limits.ValueLimit)
	if len(parts) > limits.MaxParts {
		return nil, fmt.Errorf("%w: %d parts, limit %d", ErrSnapshotTooLarge, len(parts), limits.MaxParts)
	}
	meta[metaParts] = strconv.Itoa(len(parts))
	for i, part := range parts {
		meta[partKey(i)] = part
	}
	return meta, nil
}

// UnpackMetadata reverses PackMetadata.
func UnpackMetadata(meta map[string]string) (SessionMetadata, error) {
	out := SessionMetadata{
		UserID:   strings.TrimSpace(meta[MetaUserID]),
		Currency: strings.TrimSpace(meta[MetaCurrency]),
	}
	raw := meta[MetaItems]
	if raw == "" && meta[metaParts] != "" {
		n, err := strconv.Atoi(meta[metaParts])
		if err != nil || n < 1 {
			return SessionMetadata{}, fmt.Errorf("%w: bad %s", ErrMalformedEvent, metaParts)
		}
		var b strings.Builder
		for i := 0; i < n; i++ {
			part, ok := meta[partKey(i)]
			if !ok {
				return SessionMetadata{}, fmt.Errorf("%w: missing %s", ErrMalformedEvent, partKey(i))
			}
			b.WriteString(part)
		}
		raw = b.String()
	}
	if raw == "" {
		return out, nil
	}
	var decoded []metadataItem
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return SessionMetadata{}, fmt.Errorf("%w: items: %w", ErrMalformedEvent, err)
	}
	for _, item := range decoded {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return SessionMetadata{}, fmt.Errorf("%w: price for %s: %w", ErrMalformedEvent, item.ID, err)
		}
		out.Items = append(out.Items, EventItem{ProductID: item.ID, Quantity: item.Quantity, UnitPrice: price})
	}
	return out, nil
}

func partKey(i int) string {
	return MetaItems + "_" + strconv.Itoa(i)
}

func chunk(s string, size int) []string {
	var parts []string
	for len(s) > size {
		parts = append(parts, s[:size])
		s = s[size:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
