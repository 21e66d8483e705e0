package application

import (
	"context"
	"fmt"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
)

// resolveSnapshot prices the requested lines (or the server cart when none are given)
// from the catalog. Client-supplied prices do not exist in the input by construction.
func resolveSnapshot(ctx context.Context, products ports.ProductLookup, carts ports.CartReader, userID string, requested []domain.RequestedItem) (domain.Snapshot, error) {
	if len(requested) == 0 && carts != nil {
		items, err := carts.Snapshot(ctx, userID)
		if err != nil {
			return domain.Snapshot{}, err
		}
		for _, item := range items {
			requested = append(requested, domain.RequestedItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}

	merged := make([]domain.RequestedItem, 0, len(requested))
	index := map[string]int{}
	for _, item := range requested {
		if err := item.Validate(); err != nil {
			return domain.Snapshot{}, err
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			if merged[i].Quantity > domain.MaxLineQuantity {
				return domain.Snapshot{}, domain.ErrInvalidQuantity
			}
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	if len(merged) == 0 {
		return domain.Snapshot{}, domain.ErrEmptyCart
	}

	ids := make([]string, 0, len(merged))
	for _, item := range merged {
		ids = append(ids, item.ProductID)
	}
	found, err := products.GetMany(ctx, ids)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot := domain.Snapshot{Lines: make([]domain.LineItem, 0, len(merged))}
	for _, item := range merged {
		product, ok := found[item.ProductID]
		if !ok || product == nil {
			return domain.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, item.ProductID)
		}
		snapshot.Lines = append(snapshot.Lines, domain.LineItem{
			ProductID: product.ID,
			Title:     product.Title,
			Image:     product.Image,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
	}
	return snapshot, nil
}
