package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/storefront-api/internal/domains/cart/domain"
	"github.com/Apurer/storefront-api/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory cart adapter. A single mutex makes every
// mutation, including increments, one critical section.
type Repository struct {
	mu     sync.RWMutex
	carts  map[string]*domain.Cart // by user id
	owners map[string]string       // cart id -> user id
	items  map[string]*domain.Item // by item id
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		carts:  map[string]*domain.Cart{},
		owners: map[string]string{},
		items:  map[string]*domain.Item{},
		now:    time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) GetOrCreate(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.cartLocked(userID)
	return r.snapshotLocked(cart), nil
}

func (r *Repository) AddQuantity(_ context.Context, cartID, productID string, quantity int) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[cartID]; !ok {
		return nil, ports.ErrNotFound
	}
	now := r.now().UTC()
	for _, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID {
			merged, err := domain.MergeQuantity(item.Quantity, quantity)
			if err != nil {
				return nil, err
			}
			item.Quantity = merged
			item.UpdatedAt = now
			return item.Clone(), nil
		}
	}
	item := &domain.Item{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.items[item.ID] = item
	return item.Clone(), nil
}

func (r *Repository) SetQuantity(_ context.Context, userID, itemID string, quantity int) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.ownedLocked(userID, itemID)
	if !ok {
		return nil, ports.ErrNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = r.now().UTC()
	return item.Clone(), nil
}

func (r *Repository) DeleteItem(_ context.Context, userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ownedLocked(userID, itemID); !ok {
		return ports.ErrNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *Repository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked(userID)
	return nil
}

// Drain hands the user's current items to fn and clears them only when fn
// succeeds. Cart mutations are blocked while fn runs.
func (r *Repository) Drain(ctx context.Context, userID string, fn func(ctx context.Context, items []*domain.Item) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.snapshotLocked(r.cartLocked(userID))
	if err := fn(ctx, cart.Items); err != nil {
		return err
	}
	r.clearLocked(userID)
	return nil
}

func (r *Repository) cartLocked(userID string) *domain.Cart {
	if cart, ok := r.carts[userID]; ok {
		return cart
	}
	now := r.now().UTC()
	cart := &domain.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.carts[userID] = cart
	r.owners[cart.ID] = userID
	return cart
}

func (r *Repository) snapshotLocked(cart *domain.Cart) *domain.Cart {
	clone := *cart
	clone.Items = nil
	for _, item := range r.items {
		if item.CartID == cart.ID {
			clone.Items = append(clone.Items, item.Clone())
		}
	}
	sort.Slice(clone.Items, func(i, j int) bool {
		if !clone.Items[i].CreatedAt.Equal(clone.Items[j].CreatedAt) {
			return clone.Items[i].CreatedAt.Before(clone.Items[j].CreatedAt)
		}
		return clone.Items[i].ID < clone.Items[j].ID
	})
	return &clone
}

func (r *Repository) ownedLocked(userID, itemID string) (*domain.Item, bool) {
	item, ok := r.items[itemID]
	if !ok || r.owners[item.CartID] != userID {
		return nil, false
	}
	return item, true
}

func (r *Repository) clearLocked(userID string) {
	cart, ok := r.carts[userID]
	if !ok {
		return
	}
	for id, item := range r.items {
		if item.CartID == cart.ID {
			delete(r.items, id)
		}
	}
}
