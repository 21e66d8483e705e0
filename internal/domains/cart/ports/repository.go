package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"

	"github.com/Apurer/storefront-api/internal/domains/cart/domain"
)

// ErrNotFound covers items that do not exist and items owned by another user's cart.
var ErrNotFound = errors.New("cart item not found")

// Repository persists carts and their items. Items are returned without products.
type Repository interface {
	// GetOrCreate returns the user's cart, creating it on first access.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	// AddQuantity inserts the line or atomically increments an existing one.
	AddQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.Item, error)
	// SetQuantity overwrites the quantity of an item owned by userID.
	SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Item, error)
	// DeleteItem removes an item owned by userID.
	DeleteItem(ctx context.Context, userID, itemID string) error
	// Clear removes every item from the user's cart but keeps the cart.
	Clear(ctx context.Context, userID string) error
}

// ProductLookup reads products from the catalog.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*catalogdomain.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]*catalogdomain.Product, error)
}
