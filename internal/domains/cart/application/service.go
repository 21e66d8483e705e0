package application

import (
	"context"
	"errors"
	"strings"

	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"

	"github.com/Apurer/storefront-api/internal/domains/cart/domain"
	"github.com/Apurer/storefront-api/internal/domains/cart/ports"
)

// Service orchestrates cart use cases.
type Service struct {
	repo     ports.Repository
	products ports.ProductLookup
}

func NewService(repo ports.Repository, products ports.ProductLookup) *Service {
	return &Service{repo: repo, products: products}
}

// GetCart returns the user's cart with current products, creating it if needed.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, cart.Items...); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem puts quantity units of a product in the cart, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Item, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	if err := domain.ValidateLine(productID, quantity); err != nil {
		return nil, mapError(err)
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.AddQuantity(ctx, cart.ID, product.ID, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	item.Product = product
	return item, nil
}

// UpdateItemQuantity overwrites a line's quantity. Invalid quantities leave the item untouched.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Item, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, mapError(err)
	}
	item, err := s.repo.SetQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes a line owned by the user.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.repo.DeleteItem(ctx, userID, itemID)
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return mapError(domain.ErrEmptyUserID)
	}
	return s.repo.Clear(ctx, userID)
}

// Snapshot resolves the cart against the catalog for checkout. Lines whose product is gone are dropped.
func (s *Service) Snapshot(ctx context.Context, userID string) ([]*domain.Item, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]*domain.Item, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Product != nil {
			lines = append(lines, item)
		}
	}
	return lines, nil
}

func (s *Service) hydrate(ctx context.Context, items ...*domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		item.Product = products[item.ProductID]
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
