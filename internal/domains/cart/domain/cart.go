package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

var (
	ErrEmptyUserID     = errors.New("user id is required")
	ErrEmptyProductID  = errors.New("product id is required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrQuantityLimit   = errors.New("quantity exceeds the per-line limit")
)

// MaxQuantity bounds a single cart line, including merged additions.
const MaxQuantity = 999

// Cart is the per-user basket. It exists once per user and outlives checkouts.
type Cart struct {
	ID        string
	UserID    string
	Items     []*Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one product line. Product is hydrated from the catalog on read and
// may be nil when the product has since been removed.
type Item struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	Product   *catalogdomain.Product
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateLine checks the inputs for adding a product to a cart.
func ValidateLine(productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return ErrEmptyProductID
	}
	return ValidateQuantity(quantity)
}

func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return ErrQuantityLimit
	}
	return nil
}

// MergeQuantity adds to an existing line. Both operands are already bounded, so the sum cannot overflow.
func MergeQuantity(current, added int) (int, error) {
	merged := current + added
	if merged > MaxQuantity {
		return current, ErrQuantityLimit
	}
	return merged, nil
}

// Subtotal prices the line at the current catalog price.
func (i *Item) Subtotal() decimal.Decimal {
	if i == nil || i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone copies the item; the product pointer is shared.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

// Total sums the line subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
