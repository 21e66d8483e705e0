package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	cartpostgres "github.com/Apurer/storefront-api/internal/domains/cart/adapters/persistence/postgres"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	orderspostgres "github.com/Apurer/storefront-api/internal/domains/orders/adapters/persistence/postgres"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

var _ ports.Ledger = (*Ledger)(nil)

var errAlreadyProcessed = errors.New("payment already processed")

// Ledger commits checkout side effects in PostgreSQL transactions.
type Ledger struct {
	db       *gorm.DB
	carts    *cartpostgres.Repository
	orders   *orderspostgres.Repository
	payments *IdempotencyStore
}

// NewLedger wires the repositories whose writes must commit together.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{
		db:       db,
		carts:    cartpostgres.NewRepository(db),
		orders:   orderspostgres.NewRepository(db),
		payments: NewIdempotencyStore(db),
	}
}

// CommitCart row-locks the cart lines, creates the order and deletes the lines in one transaction.
func (l *Ledger) CommitCart(ctx context.Context, userID string, build ports.OrderBuilder) (*ordersdomain.Order, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var created *ordersdomain.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := l.carts.WithTx(tx).LockItems(ctx, userID)
		if err != nil {
			return err
		}
		order, err := build(ctx, cart.Items)
		if err != nil {
			return err
		}
		created, err = l.orders.WithTx(tx).Create(ctx, order)
		if err != nil {
			return err
		}
		return l.carts.WithTx(tx).Clear(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CommitPayment claims the payment key and inserts the order in one transaction. A key
// that is already claimed rolls the transaction back and returns the original order.
func (l *Ledger) CommitPayment(ctx context.Context, record ports.ProcessedPayment, order *ordersdomain.Order) (*ordersdomain.Order, bool, error) {
	if err := l.ensureDB(); err != nil {
		return nil, false, err
	}
	if order == nil {
		return nil, false, errors.New("order is nil")
	}
	record.OrderID = order.ID
	var created *ordersdomain.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := l.payments.WithTx(tx).Claim(ctx, record)
		if err != nil {
			return err
		}
		if !claimed {
			return errAlreadyProcessed
		}
		created, err = l.orders.WithTx(tx).Create(ctx, order)
		return err
	})
	if err == nil {
		return created, false, nil
	}
	if !errors.Is(err, errAlreadyProcessed) {
		return nil, false, err
	}

	existing, err := l.payments.Get(ctx, record.Key)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, errors.New("processed payment vanished after conflict")
	}
	if existing.RequestHash != record.RequestHash {
		return nil, false, ports.ErrIdempotencyConflict
	}
	stored, err := l.orders.GetByID(ctx, existing.OrderID)
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres checkout ledger not configured")
	}
	return nil
}
