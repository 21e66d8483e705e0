package mapper

import (
	catalogmapper "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
)

// Toggle is the payload for POST /wishlist.
type Toggle struct {
	ProductID string `json:"productId"`
}

// ToggleResult is the response for POST /wishlist.
type ToggleResult struct {
	Message    string `json:"message"`
	InWishlist bool   `json:"inWishlist"`
}

func FromOutcome(outcome domain.Outcome) ToggleResult {
	if outcome == domain.Removed {
		return ToggleResult{Message: "Item removed from wishlist", InWishlist: false}
	}
	return ToggleResult{Message: "Item added to wishlist", InWishlist: true}
}

func FromDomainProducts(products []*catalogdomain.Product) []*catalogmapper.Product {
	out := make([]*catalogmapper.Product, 0, len(products))
	for _, product := range products {
		out = append(out, catalogmapper.FromDomainProduct(product))
	}
	return out
}
