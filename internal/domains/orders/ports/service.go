package ports

import (
	"context"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

// Service exposes order history use cases. Orders are read-only to their owners.
type Service interface {
	ListForUser(ctx context.Context, userID string) ([]*domain.Order, error)
	GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error)
	FindBySession(ctx context.Context, userID, sessionID string) (*domain.Order, error)
	// UpdateStatus is an administrative transition.
	UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}
