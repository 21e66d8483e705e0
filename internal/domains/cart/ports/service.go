package ports

import (
	"context"

	"github.com/Apurer/storefront-api/internal/domains/cart/domain"
)

// Service exposes cart use cases to adapters. Every operation is scoped to userID.
type Service interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Item, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Item, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	// Snapshot returns the lines whose products still exist, priced from the live catalog.
	Snapshot(ctx context.Context, userID string) ([]*domain.Item, error)
}
