package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

var ErrMalformedEvent = errors.New("payment event is malformed")

// EventKind classifies a verified gateway notification.
type EventKind string

const (
	// EventPaymentCompleted means the money is captured and the order should exist.
	EventPaymentCompleted EventKind = "payment.completed"
	// EventIgnored covers every other notification; it is acknowledged without side effects.
	EventIgnored EventKind = "ignored"
)

// EventItem is a line carried in session metadata, priced in the base currency.
type EventItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// GatewayEvent is a signature-verified, provider-neutral webhook payload.
type GatewayEvent struct {
	Provider        string
	EventID         string
	Type            string
	Kind            EventKind
	SessionID       string
	PaymentIntentID string
	UserID          string
	Currency        string
	AmountMinor     int64
	Items           []EventItem
	Shipping        *ordersdomain.Address
}

// IdempotencyKey collapses every notification about one payment onto a single key.
func (e GatewayEvent) IdempotencyKey() string {
	return e.Provider + ":" + e.SessionID
}

// Validate checks a completed event carries enough to build an order.
func (e GatewayEvent) Validate() error {
	if e.Kind != EventPaymentCompleted {
		return nil
	}
	if strings.TrimSpace(e.SessionID) == "" {
		return errors.Join(ErrMalformedEvent, errors.New("missing session id"))
	}
	if strings.TrimSpace(e.UserID) == "" {
		return errors.Join(ErrMalformedEvent, errors.New("missing user id"))
	}
	if len(e.Items) == 0 {
		return errors.Join(ErrMalformedEvent, errors.New("missing items"))
	}
	for _, item := range e.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return errors.Join(ErrMalformedEvent, errors.New("invalid item"))
		}
	}
	return nil
}
