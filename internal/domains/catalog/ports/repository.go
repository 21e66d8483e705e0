package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("product not found")

// SortOrder selects the listing order.
type SortOrder string

const (
	SortNewest      SortOrder = "newest"
	SortPriceLow    SortOrder = "price-low"
	SortPriceHigh   SortOrder = "price-high"
	SortBestselling SortOrder = "bestselling"
	SortRating      SortOrder = "rating"
)

// Query is a normalized catalog search. Empty strings mean "no filter".
type Query struct {
	Search   string
	Category string
	Brand    string
	Size     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortOrder
	Offset   int
	Limit    int
}

// Repository persists catalog products.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetMany returns the products that exist, keyed by id. Missing ids are omitted.
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	// Search returns one page of matches and the total match count.
	Search(ctx context.Context, query Query) ([]*domain.Product, int64, error)
	// ReplaceAll swaps the whole catalog atomically.
	ReplaceAll(ctx context.Context, products []*domain.Product) error
}
