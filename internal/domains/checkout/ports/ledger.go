package ports

import (
	"context"
	"errors"
	"time"

	cartdomain "github.com/Apurer/storefront-api/internal/domains/cart/domain"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

// ErrIdempotencyConflict indicates the same payment key arrived with a different payload.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// ProcessedPayment links a payment key to the order it produced.
type ProcessedPayment struct {
	Key         string
	RequestHash string
	OrderID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore remembers which payments already became orders.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*ProcessedPayment, error)
	// Claim stores the record if its key is new and reports whether this call stored it.
	Claim(ctx context.Context, record ProcessedPayment) (bool, error)
}

// OrderBuilder turns the locked cart lines into an order inside the ledger transaction.
type OrderBuilder func(ctx context.Context, items []*cartdomain.Item) (*ordersdomain.Order, error)

// Ledger commits checkout side effects atomically.
type Ledger interface {
	// CommitCart locks the user's cart, builds the order from its lines, stores it and
	// empties the cart as one unit. The builder sees the lines as of the lock.
	CommitCart(ctx context.Context, userID string, build OrderBuilder) (*ordersdomain.Order, error)
	// CommitPayment stores the order and its processed-payment record together. When the
	// key was already processed the existing order is returned with replayed=true.
	CommitPayment(ctx context.Context, record ProcessedPayment, order *ordersdomain.Order) (stored *ordersdomain.Order, replayed bool, err error)
}
