package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/shared/money"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrEmptyUserID      = errors.New("checkout user id is required")
	ErrEmptyProductID   = errors.New("line product id is required")
	ErrInvalidQuantity  = errors.New("line quantity is out of range")
	ErrUnknownProduct   = errors.New("line references a product that does not exist")
	ErrAmountMismatch   = errors.New("amount does not match the server-computed total")
	ErrSnapshotTooLarge = errors.New("cart snapshot does not fit in gateway metadata")
)

// MaxLineQuantity matches the cart's per-line bound.
const MaxLineQuantity = 999

// RequestedItem is the client's (productId, quantity) view of a line. Prices are never trusted.
type RequestedItem struct {
	ProductID string
	Quantity  int
}

func (r RequestedItem) Validate() error {
	if strings.TrimSpace(r.ProductID) == "" {
		return ErrEmptyProductID
	}
	if r.Quantity < 1 || r.Quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// LineItem is a catalog-resolved line frozen at checkout time.
type LineItem struct {
	ProductID string
	Title     string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Snapshot is the set of lines a payment session charges for.
type Snapshot struct {
	Lines []LineItem
}

// Total is the base-currency sum of the lines.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(2)
}

// UnitMinor is one unit of the line converted to currency and rounded to minor units.
func (l LineItem) UnitMinor(currency money.Currency) int64 {
	return money.ToMinorUnits(l.UnitPrice, currency)
}

// AmountMinor charges each line at its rounded unit price so gateway line items sum exactly.
func (s Snapshot) AmountMinor(currency money.Currency) int64 {
	var total int64
	for _, line := range s.Lines {
		total += line.UnitMinor(currency) * int64(line.Quantity)
	}
	return total
}
