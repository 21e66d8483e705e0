package ports

import (
	"context"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	usersdomain "github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
)

// Repository persists wishlist entries.
type Repository interface {
	// Add inserts the entry; adding an existing entry is a no-op.
	Add(ctx context.Context, entry domain.Entry) error
	// Remove deletes the entry and reports whether it existed.
	Remove(ctx context.Context, userID, productID string) (bool, error)
	// List returns the user's entries, newest first.
	List(ctx context.Context, userID string) ([]domain.Entry, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*usersdomain.User, error)
}

type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*catalogdomain.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]*catalogdomain.Product, error)
}

type Service interface {
	Toggle(ctx context.Context, userID, productID string) (domain.Outcome, error)
	// List returns the saved products; entries whose product left the catalog are skipped.
	List(ctx context.Context, userID string) ([]*catalogdomain.Product, error)
}
