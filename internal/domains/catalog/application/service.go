package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	// AllCategories is the storefront's "no category filter" sentinel.
	AllCategories = "All Categories"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for seeding.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List filters, sorts and paginates the catalog.
func (s *Service) List(ctx context.Context, input ports.ListInput) (*ports.Page, error) {
	query, page, err := normalizeListInput(input)
	if err != nil {
		return nil, err
	}
	products, total, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(query.Limit) - 1) / int64(query.Limit))
	return &ports.Page{
		Products:   products,
		Total:      total,
		Page:       page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}

// Get loads a single product.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	return s.repo.GetByID(ctx, id)
}

// Seed replaces the catalog with the built-in sample products.
func (s *Service) Seed(ctx context.Context) (int, error) {
	products, err := SampleProducts(s.now())
	if err != nil {
		return 0, mapError(err)
	}
	if err := s.repo.ReplaceAll(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// UpdatePrice reprices a product for future purchases.
func (s *Service) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Reprice(price); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, product)
}

func normalizeListInput(input ports.ListInput) (ports.Query, int, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	sort, err := parseSort(input.Sort)
	if err != nil {
		return ports.Query{}, 0, err
	}
	if input.MinPrice != nil && input.MinPrice.IsNegative() {
		return ports.Query{}, 0, fmt.Errorf("%w: minPrice must not be negative", ErrInvalidInput)
	}
	if input.MinPrice != nil && input.MaxPrice != nil && input.MinPrice.GreaterThan(*input.MaxPrice) {
		return ports.Query{}, 0, fmt.Errorf("%w: minPrice must not exceed maxPrice", ErrInvalidInput)
	}
	category := strings.TrimSpace(input.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	return ports.Query{
		Search:   strings.TrimSpace(input.Search),
		Category: category,
		Brand:    strings.TrimSpace(input.Brand),
		Size:     strings.TrimSpace(input.Size),
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		Sort:     sort,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}, page, nil
}

func parseSort(raw string) (ports.SortOrder, error) {
	switch sort := ports.SortOrder(strings.ToLower(strings.TrimSpace(raw))); sort {
	case "":
		return ports.SortNewest, nil
	case ports.SortNewest, ports.SortPriceLow, ports.SortPriceHigh, ports.SortBestselling, ports.SortRating:
		return sort, nil
	default:
		return "", fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, raw)
	}
}

var _ ports.Service = (*Service)(nil)
