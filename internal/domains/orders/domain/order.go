package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

// Status enumerates order progression.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusFulfilled Status = "fulfilled"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// BaseCurrency is the currency order totals are recorded in.
const BaseCurrency = "USD"

var (
	ErrEmptyUserID       = errors.New("order user id is required")
	ErrNoItems           = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrNegativePrice     = errors.New("item price must not be negative")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrIllegalTransition = errors.New("order status transition is not allowed")
)

var transitions = map[Status][]Status{
	StatusConfirmed: {StatusCompleted, StatusFulfilled, StatusRefunded, StatusCancelled},
	StatusCompleted: {StatusFulfilled, StatusRefunded, StatusCancelled},
	StatusFulfilled: {StatusRefunded},
}

// Item freezes the unit price a product was bought at.
type Item struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
	// Product is hydrated on read and may be nil if the product was removed.
	Product *catalogdomain.Product
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Address is the shipping destination reported by a payment gateway.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Charge is what the gateway actually collected, in the customer's currency.
type Charge struct {
	Amount   decimal.Decimal
	Currency string
}

// Order is the purchase aggregate. Items and Total never change after creation.
type Order struct {
	ID               string
	UserID           string
	Total            decimal.Decimal
	Currency         string
	Status           Status
	Items            []Item
	PaymentProvider  string
	PaymentIntentID  string
	GatewaySessionID string
	ShippingAddress  *Address
	Charged          *Charge
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder builds an order with a fresh id and a total computed from items.
func NewOrder(userID string, status Status, items []Item) (*Order, error) {
	order := &Order{
		ID:       uuid.NewString(),
		UserID:   strings.TrimSpace(userID),
		Currency: BaseCurrency,
		Status:   status,
		Items:    make([]Item, len(items)),
	}
	copy(order.Items, items)
	for i := range order.Items {
		order.Items[i].ID = uuid.NewString()
		order.Items[i].OrderID = order.ID
	}
	order.Total = order.computeTotal()
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.UserID == "" {
		return ErrEmptyUserID
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if item.Price.IsNegative() {
			return ErrNegativePrice
		}
	}
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Transition moves the order to next. Moving to the current status is a no-op.
func (o *Order) Transition(next Status) error {
	if !IsValidStatus(next) {
		return ErrInvalidStatus
	}
	if next == o.Status {
		return nil
	}
	for _, allowed := range transitions[o.Status] {
		if allowed == next {
			o.Status = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, next)
}

// AttachPayment backfills gateway references without touching items or total.
func (o *Order) AttachPayment(provider, intentID, sessionID string, shipping *Address) {
	o.PaymentProvider = provider
	o.PaymentIntentID = intentID
	o.GatewaySessionID = sessionID
	if shipping != nil {
		addr := *shipping
		o.ShippingAddress = &addr
	}
}

func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = make([]Item, len(o.Items))
	copy(clone.Items, o.Items)
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		clone.ShippingAddress = &addr
	}
	if o.Charged != nil {
		charge := *o.Charged
		clone.Charged = &charge
	}
	return &clone
}

func (o *Order) computeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !IsValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func IsValidStatus(status Status) bool {
	switch status {
	case StatusConfirmed, StatusCompleted, StatusFulfilled, StatusRefunded, StatusCancelled:
		return true
	default:
		return false
	}
}
