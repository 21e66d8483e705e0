package mapper

import (
	"time"

	catalogmapper "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/http/mapper"

	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

// OrderItem is the HTTP representation of a purchased line.
type OrderItem struct {
	ID        string                 `json:"id"`
	ProductID string                 `json:"productId"`
	Quantity  int                    `json:"quantity"`
	Price     float64                `json:"price"`
	Product   *catalogmapper.Product `json:"product,omitempty"`
}

// Charge mirrors what the payment gateway collected.
type Charge struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID               string                `json:"id"`
	UserID           string                `json:"userId"`
	Total            float64               `json:"total"`
	Currency         string                `json:"currency"`
	Status           string                `json:"status"`
	Items            []OrderItem           `json:"items"`
	PaymentProvider  string                `json:"paymentProvider,omitempty"`
	PaymentIntentID  string                `json:"paymentIntentId,omitempty"`
	GatewaySessionID string                `json:"gatewaySessionId,omitempty"`
	ShippingAddress  *ordersdomain.Address `json:"shippingAddress,omitempty"`
	Charged          *Charge               `json:"charged,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
}

// StatusUpdate is the admin payload for PATCH /admin/orders/:id/status.
type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *ordersdomain.Order) Order {
	if order == nil {
		return Order{Items: []OrderItem{}}
	}
	out := Order{
		ID:               order.ID,
		UserID:           order.UserID,
		Total:            order.Total.InexactFloat64(),
		Currency:         order.Currency,
		Status:           string(order.Status),
		Items:            make([]OrderItem, 0, len(order.Items)),
		PaymentProvider:  order.PaymentProvider,
		PaymentIntentID:  order.PaymentIntentID,
		GatewaySessionID: order.GatewaySessionID,
		ShippingAddress:  order.ShippingAddress,
		CreatedAt:        order.CreatedAt,
	}
	if order.Charged != nil {
		out.Charged = &Charge{Amount: order.Charged.Amount.InexactFloat64(), Currency: order.Charged.Currency}
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, OrderItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
			Product:   catalogmapper.FromDomainProduct(item.Product),
		})
	}
	return out
}

func FromDomainOrders(orders []*ordersdomain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order))
	}
	return out
}
