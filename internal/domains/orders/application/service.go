package application

import (
	"context"
	"strings"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

// Service orchestrates order history use cases.
type Service struct {
	repo     ports.Repository
	products ports.ProductLookup
}

func NewService(repo ports.Repository, products ports.ProductLookup) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, orders...); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetForUser hides other users' orders behind ErrNotFound.
func (s *Service) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ports.ErrNotFound
	}
	if err := s.hydrate(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// FindBySession returns ErrNotFound until the payment webhook has materialized the order.
func (s *Service) FindBySession(ctx context.Context, userID, sessionID string) (*domain.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ports.ErrNotFound
	}
	order, err := s.repo.FindBySession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, mapError(err)
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Transition(next); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) hydrate(ctx context.Context, orders ...*domain.Order) error {
	if s.products == nil {
		return nil
	}
	var ids []string
	for _, order := range orders {
		ids = append(ids, order.ProductIDs()...)
	}
	if len(ids) == 0 {
		return nil
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, order := range orders {
		for i := range order.Items {
			order.Items[i].Product = products[order.Items[i].ProductID]
		}
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
