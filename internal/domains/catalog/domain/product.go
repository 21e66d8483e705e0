package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTitle     = errors.New("product title is required")
	ErrNegativePrice  = errors.New("product price must not be negative")
	ErrInvalidRating  = errors.New("product rating must be between 0 and 5")
	ErrNegativeRating = errors.New("product rating count must not be negative")
)

// Status tags shown on product cards.
const (
	StatusNew        = "NEW PRODUCT"
	StatusOutOfStock = "OUT OF STOCK"
)

// Rating aggregates customer reviews.
type Rating struct {
	Rate  float64
	Count int
}

// Product is a catalog entry. Prices are in the base currency.
type Product struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Category    string
	Brand       string
	Sizes       []string
	Price       decimal.Decimal
	Image       string
	Rating      *Rating
	Status      string
	CreatedAt   time.Time
}

// NewProduct builds a product with a slug derived from its title.
func NewProduct(id, title string, price decimal.Decimal) (*Product, error) {
	p := &Product{ID: id}
	if err := p.Rename(title); err != nil {
		return nil, err
	}
	if err := p.Reprice(price); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename sets the title and recomputes the slug.
func (p *Product) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	p.Title = title
	p.Slug = slug.Make(title)
	return nil
}

// Reprice changes the current list price. Historical orders keep their own copy.
func (p *Product) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	p.Price = price.Round(2)
	return nil
}

// Rate attaches review aggregates.
func (p *Product) Rate(rate float64, count int) error {
	if rate < 0 || rate > 5 {
		return ErrInvalidRating
	}
	if count < 0 {
		return ErrNegativeRating
	}
	p.Rating = &Rating{Rate: rate, Count: count}
	return nil
}

// HasSize reports whether size is offered, ignoring case.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}

// Validate re-checks invariants before persistence.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Rating != nil {
		if p.Rating.Rate < 0 || p.Rating.Rate > 5 {
			return ErrInvalidRating
		}
		if p.Rating.Count < 0 {
			return ErrNegativeRating
		}
	}
	return nil
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Sizes != nil {
		clone.Sizes = append([]string(nil), p.Sizes...)
	}
	if p.Rating != nil {
		r := *p.Rating
		clone.Rating = &r
	}
	return &clone
}
