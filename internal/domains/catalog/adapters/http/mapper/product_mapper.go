package mapper

import (
	"time"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

// Rating is the HTTP representation of a product rating.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is the HTTP representation of a catalog entry.
type Product struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand,omitempty"`
	Sizes       []string  `json:"sizes,omitempty"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Rating      *Rating   `json:"rating,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ProductPage is the listing envelope.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// PriceUpdate is the admin repricing payload.
type PriceUpdate struct {
	Price *string `json:"price" binding:"required"`
}

// FromDomainProduct converts a domain product to its transport shape.
func FromDomainProduct(product *catalogdomain.Product) *Product {
	if product == nil {
		return nil
	}
	out := &Product{
		ID:          product.ID,
		Slug:        product.Slug,
		Title:       product.Title,
		Description: product.Description,
		Category:    product.Category,
		Brand:       product.Brand,
		Sizes:       append([]string(nil), product.Sizes...),
		Price:       product.Price.InexactFloat64(),
		Image:       product.Image,
		Status:      product.Status,
		CreatedAt:   product.CreatedAt,
	}
	if product.Rating != nil {
		out.Rating = &Rating{Rate: product.Rating.Rate, Count: product.Rating.Count}
	}
	return out
}

func FromDomainPage(page *catalogports.Page) ProductPage {
	if page == nil {
		return ProductPage{Products: []Product{}}
	}
	products := make([]Product, 0, len(page.Products))
	for _, product := range page.Products {
		products = append(products, *FromDomainProduct(product))
	}
	return ProductPage{
		Products: products,
		Pagination: Pagination{
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	}
}
