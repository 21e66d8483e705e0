package mapper

import (
	"time"

	catalogmapper "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/http/mapper"

	cartdomain "github.com/Apurer/storefront-api/internal/domains/cart/domain"
)

// AddItem is the payload for POST /cart. Quantity defaults to 1 when omitted.
type AddItem struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (a AddItem) EffectiveQuantity() int {
	if a.Quantity == nil {
		return 1
	}
	return *a.Quantity
}

// UpdateItem is the payload for PATCH /cart/:id.
type UpdateItem struct {
	Quantity *int `json:"quantity"`
}

// CartItem is the HTTP representation of a cart line.
type CartItem struct {
	ID        string                 `json:"id"`
	CartID    string                 `json:"cartId"`
	ProductID string                 `json:"productId"`
	Quantity  int                    `json:"quantity"`
	Product   *catalogmapper.Product `json:"product"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Cart is the HTTP representation of GET /cart.
type Cart struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

func FromDomainItem(item *cartdomain.Item) CartItem {
	if item == nil {
		return CartItem{}
	}
	return CartItem{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Product:   catalogmapper.FromDomainProduct(item.Product),
		CreatedAt: item.CreatedAt,
	}
}

func FromDomainCart(cart *cartdomain.Cart) Cart {
	if cart == nil {
		return Cart{Items: []CartItem{}}
	}
	items := make([]CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, FromDomainItem(item))
	}
	return Cart{ID: cart.ID, Items: items, Total: cart.Total().InexactFloat64()}
}
