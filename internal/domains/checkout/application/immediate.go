package application

import (
	"context"
	"strings"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	cartdomain "github.com/Apurer/storefront-api/internal/domains/cart/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

// ImmediateStrategy confirms synchronously: the order is created and the cart emptied in one commit.
type ImmediateStrategy struct {
	ledger   ports.Ledger
	products ports.ProductLookup
}

func NewImmediateStrategy(ledger ports.Ledger, products ports.ProductLookup) *ImmediateStrategy {
	return &ImmediateStrategy{ledger: ledger, products: products}
}

func (s *ImmediateStrategy) Name() string { return ports.StrategyImmediate }

func (s *ImmediateStrategy) Confirm(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	var resolved map[string]*catalogdomain.Product
	order, err := s.ledger.CommitCart(ctx, userID, func(ctx context.Context, items []*cartdomain.Item) (*ordersdomain.Order, error) {
		// Re-checked under the cart lock so a retried checkout cannot replay stale lines.
		if len(items) == 0 {
			return nil, domain.ErrEmptyCart
		}
		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}
		products, err := s.products.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		// Lines whose product left the catalog are dropped, as the deferred path does;
		// the ledger still clears them with the rest of the cart.
		lines := make([]ordersdomain.Item, 0, len(items))
		for _, item := range items {
			product, ok := products[item.ProductID]
			if !ok || product == nil {
				continue
			}
			lines = append(lines, ordersdomain.Item{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}
		if len(lines) == 0 {
			return nil, domain.ErrEmptyCart
		}
		resolved = products
		return ordersdomain.NewOrder(userID, ordersdomain.StatusConfirmed, lines)
	})
	if err != nil {
		return nil, mapError(err)
	}
	for i := range order.Items {
		order.Items[i].Product = resolved[order.Items[i].ProductID]
	}
	return &ports.CheckoutResult{Strategy: s.Name(), Order: order}, nil
}

var _ ports.ConfirmationStrategy = (*ImmediateStrategy)(nil)
