package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	usersmemory "github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	usersdomain "github.com/Apurer/storefront-api/internal/domains/users/domain"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
)

type wishlistFixture struct {
	svc     *Service
	repo    *memory.Repository
	catalog *catalogmemory.Repository
	user    *usersdomain.User
	clock   time.Time
}

func newWishlistFixture(t *testing.T) *wishlistFixture {
	t.Helper()
	ctx := context.Background()

	catalog := catalogmemory.NewRepository()
	for id, title := range map[string]string{"p-backpack": "Grey Denim Backpack", "p-plush": "Blue Dinosaur Plush"} {
		product, err := catalogdomain.NewProduct(id, title, decimal.RequireFromString("19.99"))
		require.NoError(t, err)
		_, err = catalog.Save(ctx, product)
		require.NoError(t, err)
	}

	users := usersmemory.NewRepository()
	user, err := usersdomain.NewUser("Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	user, err = users.Create(ctx, user)
	require.NoError(t, err)

	f := &wishlistFixture{
		repo:    memory.NewRepository(),
		catalog: catalog,
		user:    user,
		clock:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.repo.WithClock(func() time.Time { return f.clock })
	f.svc = NewService(f.repo, users, catalog)
	return f
}

func (f *wishlistFixture) tick() {
	f.clock = f.clock.Add(time.Minute)
}

func TestToggle_AddsThenRemoves(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	outcome, err := f.svc.Toggle(ctx, f.user.ID, "p-backpack")
	require.NoError(t, err)
	assert.Equal(t, domain.Added, outcome)

	products, err := f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Grey Denim Backpack", products[0].Title)

	outcome, err = f.svc.Toggle(ctx, f.user.ID, "p-backpack")
	require.NoError(t, err)
	assert.Equal(t, domain.Removed, outcome)

	products, err = f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestToggle_UnknownProduct(t *testing.T) {
	f := newWishlistFixture(t)

	_, err := f.svc.Toggle(context.Background(), f.user.ID, "p-missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestToggle_UnknownUser(t *testing.T) {
	f := newWishlistFixture(t)

	_, err := f.svc.Toggle(context.Background(), "ghost", "p-backpack")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggle_RequiresIDs(t *testing.T) {
	f := newWishlistFixture(t)

	_, err := f.svc.Toggle(context.Background(), f.user.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrEmptyProductID)
}

func TestToggle_RemovesEntryForDeletedProduct(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	_, err := f.svc.Toggle(ctx, f.user.ID, "p-plush")
	require.NoError(t, err)
	require.NoError(t, f.catalog.ReplaceAll(ctx, nil))

	products, err := f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, products)

	outcome, err := f.svc.Toggle(ctx, f.user.ID, "p-plush")
	require.NoError(t, err)
	assert.Equal(t, domain.Removed, outcome)
}

func TestList_NewestFirst(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	_, err := f.svc.Toggle(ctx, f.user.ID, "p-backpack")
	require.NoError(t, err)
	f.tick()
	_, err = f.svc.Toggle(ctx, f.user.ID, "p-plush")
	require.NoError(t, err)

	products, err := f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p-plush", products[0].ID)
	assert.Equal(t, "p-backpack", products[1].ID)
}
