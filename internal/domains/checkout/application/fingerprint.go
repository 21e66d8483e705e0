package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
)

type normalizedPayment struct {
	UserID   string           `json:"userId"`
	Currency string           `json:"currency"`
	Items    []normalizedItem `json:"items"`
}

type normalizedItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

// FingerprintEvent hashes the parts of a payment event that determine the order.
// Event id and type are excluded so every notification about one payment agrees.
func FingerprintEvent(event domain.GatewayEvent) (string, error) {
	normalized := normalizedPayment{
		UserID:   strings.TrimSpace(event.UserID),
		Currency: strings.ToUpper(strings.TrimSpace(event.Currency)),
		Items:    make([]normalizedItem, 0, len(event.Items)),
	}
	for _, item := range event.Items {
		normalized.Items = append(normalized.Items, normalizedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
