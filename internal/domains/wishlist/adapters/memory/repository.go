package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
)

var _ ports.Repository = (*Repository)(nil)

type key struct {
	userID    string
	productID string
}

type Repository struct {
	mu      sync.RWMutex
	entries map[key]domain.Entry
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{entries: map[key]domain.Entry{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Add(_ context.Context, entry domain.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{entry.UserID, entry.ProductID}
	if _, ok := r.entries[k]; ok {
		return nil
	}
	entry.CreatedAt = r.now().UTC()
	r.entries[k] = entry
	return nil
}

func (r *Repository) Remove(_ context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{userID, productID}
	if _, ok := r.entries[k]; !ok {
		return false, nil
	}
	delete(r.entries, k)
	return true, nil
}

func (r *Repository) List(_ context.Context, userID string) ([]domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Entry
	for k, entry := range r.entries {
		if k.userID == userID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
