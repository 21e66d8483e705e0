package application

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	usersports "github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
)

var (
	// ErrInvalidInput signals the request violated a wishlist invariant.
	ErrInvalidInput    = errors.New("invalid wishlist input")
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
)

type Service struct {
	repo     ports.Repository
	users    ports.UserLookup
	products ports.ProductLookup
}

func NewService(repo ports.Repository, users ports.UserLookup, products ports.ProductLookup) *Service {
	return &Service{repo: repo, users: users, products: products}
}

// Toggle removes the product if saved, otherwise adds it. The product only has to
// exist when it is being added.
func (s *Service) Toggle(ctx context.Context, userID, productID string) (domain.Outcome, error) {
	entry, err := domain.NewEntry(userID, productID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.ensureUser(ctx, entry.UserID); err != nil {
		return "", err
	}
	removed, err := s.repo.Remove(ctx, entry.UserID, entry.ProductID)
	if err != nil {
		return "", err
	}
	if removed {
		return domain.Removed, nil
	}
	if _, err := s.products.GetByID(ctx, entry.ProductID); err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return "", ErrProductNotFound
		}
		return "", err
	}
	if err := s.repo.Add(ctx, entry); err != nil {
		return "", err
	}
	return domain.Added, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*catalogdomain.Product, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrEmptyUserID)
	}
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	found, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make([]*catalogdomain.Product, 0, len(entries))
	for _, id := range ids {
		if product, ok := found[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (s *Service) ensureUser(ctx context.Context, userID string) error {
	if s.users == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, usersports.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
