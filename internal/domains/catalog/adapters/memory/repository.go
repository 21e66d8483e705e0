package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog adapter.
type Repository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{products: map[string]*domain.Product{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	clone := product.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	if existing, ok := r.products[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = r.now().UTC()
	}
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *Repository) GetMany(_ context.Context, ids []string) (map[string]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			result[id] = product.Clone()
		}
	}
	return result, nil
}

func (r *Repository) Search(_ context.Context, query ports.Query) ([]*domain.Product, int64, error) {
	r.mu.RLock()
	matches := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if matchesQuery(product, query) {
			matches = append(matches, product.Clone())
		}
	}
	r.mu.RUnlock()

	sortProducts(matches, query.Sort)
	total := int64(len(matches))
	start := query.Offset
	if start > len(matches) {
		start = len(matches)
	}
	end := len(matches)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	return matches[start:end], total, nil
}

func (r *Repository) ReplaceAll(_ context.Context, products []*domain.Product) error {
	next := make(map[string]*domain.Product, len(products))
	for _, product := range products {
		if err := product.Validate(); err != nil {
			return err
		}
		clone := product.Clone()
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = r.now().UTC()
		}
		next[clone.ID] = clone
	}
	r.mu.Lock()
	r.products = next
	r.mu.Unlock()
	return nil
}

func matchesQuery(p *domain.Product, q ports.Query) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!strings.Contains(strings.ToLower(p.Category), needle) {
			return false
		}
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Brand != "" && !strings.EqualFold(p.Brand, q.Brand) {
		return false
	}
	if q.Size != "" && !p.HasSize(q.Size) {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	return true
}

func sortProducts(products []*domain.Product, order ports.SortOrder) {
	less := func(a, b *domain.Product) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch order {
		case ports.SortPriceLow:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case ports.SortPriceHigh:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case ports.SortBestselling:
			if ac, bc := ratingCount(a), ratingCount(b); ac != bc {
				return ac > bc
			}
		case ports.SortRating:
			if ar, br := ratingRate(a), ratingRate(b); ar != br {
				return ar > br
			}
		}
		return less(a, b)
	})
}

func ratingCount(p *domain.Product) int {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Count
}

func ratingRate(p *domain.Product) float64 {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Rate
}
