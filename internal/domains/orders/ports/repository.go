package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists orders together with their items.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update writes status and payment/shipping backfill. Items and total are never rewritten.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	FindBySession(ctx context.Context, userID, sessionID string) (*domain.Order, error)
}

// ProductLookup hydrates order items for display.
type ProductLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*catalogdomain.Product, error)
}
