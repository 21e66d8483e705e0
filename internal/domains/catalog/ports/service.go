package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

// ListInput carries raw listing parameters from the transport layer.
type ListInput struct {
	Search   string
	Category string
	Brand    string
	Size     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	Limit    int
}

// Page is one page of listing results.
type Page struct {
	Products   []*domain.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// Service exposes catalog use cases to adapters.
type Service interface {
	List(ctx context.Context, input ListInput) (*Page, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Seed(ctx context.Context) (int, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*domain.Product, error)
}
