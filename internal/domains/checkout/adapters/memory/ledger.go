package memory

import (
	"context"
	"errors"
	"sync"

	cartmemory "github.com/Apurer/storefront-api/internal/domains/cart/adapters/memory"
	cartdomain "github.com/Apurer/storefront-api/internal/domains/cart/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	ordersmemory "github.com/Apurer/storefront-api/internal/domains/orders/adapters/memory"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger commits checkout side effects across the in-memory cart and order repositories.
type Ledger struct {
	mu       sync.Mutex
	carts    *cartmemory.Repository
	orders   *ordersmemory.Repository
	payments *IdempotencyStore
}

func NewLedger(carts *cartmemory.Repository, orders *ordersmemory.Repository, payments *IdempotencyStore) *Ledger {
	return &Ledger{carts: carts, orders: orders, payments: payments}
}

// CommitCart builds and stores the order while the cart is drained under its lock.
func (l *Ledger) CommitCart(ctx context.Context, userID string, build ports.OrderBuilder) (*ordersdomain.Order, error) {
	var created *ordersdomain.Order
	err := l.carts.Drain(ctx, userID, func(ctx context.Context, items []*cartdomain.Item) error {
		order, err := build(ctx, items)
		if err != nil {
			return err
		}
		created, err = l.orders.Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CommitPayment serializes payment commits so the key check and order insert are one step.
func (l *Ledger) CommitPayment(ctx context.Context, record ports.ProcessedPayment, order *ordersdomain.Order) (*ordersdomain.Order, bool, error) {
	if order == nil {
		return nil, false, errors.New("order is nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.payments.Get(ctx, record.Key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.RequestHash != record.RequestHash {
			return nil, false, ports.ErrIdempotencyConflict
		}
		stored, err := l.orders.GetByID(ctx, existing.OrderID)
		if err != nil {
			return nil, false, err
		}
		return stored, true, nil
	}

	created, err := l.orders.Create(ctx, order)
	if err != nil {
		return nil, false, err
	}
	record.OrderID = created.ID
	claimed, err := l.payments.Claim(ctx, record)
	if err != nil {
		return nil, false, err
	}
	if !claimed {
		return nil, false, errors.New("processed payment claimed outside the ledger")
	}
	return created, false, nil
}
