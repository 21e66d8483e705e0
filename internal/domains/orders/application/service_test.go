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

	"github.com/Apurer/storefront-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

type ordersFixture struct {
	svc     *Service
	repo    *memory.Repository
	catalog *catalogmemory.Repository
	product *catalogdomain.Product
}

func newOrdersFixture(t *testing.T) ordersFixture {
	t.Helper()
	catalog := catalogmemory.NewRepository()
	product, err := catalogdomain.NewProduct("p1", "Yellow Sneakers", decimal.RequireFromString("49.99"))
	require.NoError(t, err)
	_, err = catalog.Save(context.Background(), product)
	require.NoError(t, err)

	repo := memory.NewRepository()
	tick := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	return ordersFixture{svc: NewService(repo, catalog), repo: repo, catalog: catalog, product: product}
}

func (f ordersFixture) place(t *testing.T, userID string, status domain.Status, sessionID string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(userID, status, []domain.Item{{ProductID: f.product.ID, Quantity: 2, Price: f.product.Price}})
	require.NoError(t, err)
	order.GatewaySessionID = sessionID
	created, err := f.repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestListForUser_NewestFirstAndScoped(t *testing.T) {
	f := newOrdersFixture(t)
	first := f.place(t, "u1", domain.StatusConfirmed, "")
	second := f.place(t, "u1", domain.StatusCompleted, "cs_1")
	f.place(t, "u2", domain.StatusConfirmed, "")

	orders, err := f.svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	require.NotNil(t, orders[0].Items[0].Product)
	assert.Equal(t, "Yellow Sneakers", orders[0].Items[0].Product.Title)
}

func TestGetForUser_HidesOtherUsersOrders(t *testing.T) {
	f := newOrdersFixture(t)
	order := f.place(t, "owner", domain.StatusConfirmed, "")

	_, err := f.svc.GetForUser(context.Background(), "someone-else", order.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	got, err := f.svc.GetForUser(context.Background(), "owner", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderPricesSurviveCatalogRepricing(t *testing.T) {
	f := newOrdersFixture(t)
	order := f.place(t, "u1", domain.StatusConfirmed, "")

	require.NoError(t, f.product.Reprice(decimal.RequireFromString("1.00")))
	_, err := f.catalog.Save(context.Background(), f.product)
	require.NoError(t, err)

	got, err := f.svc.GetForUser(context.Background(), "u1", order.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("49.99")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("99.98")))
	assert.True(t, got.Items[0].Product.Price.Equal(decimal.RequireFromString("1.00")))
}

func TestFindBySession(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	_, err := f.svc.FindBySession(ctx, "u1", "cs_pending")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	order := f.place(t, "u1", domain.StatusCompleted, "cs_pending")
	got, err := f.svc.FindBySession(ctx, "u1", "cs_pending")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.FindBySession(ctx, "u2", "cs_pending")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	order := f.place(t, "u1", domain.StatusCompleted, "")

	updated, err := f.svc.UpdateStatus(ctx, order.ID, "fulfilled")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "teleported")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateStatus(ctx, "missing", "refunded")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	stored, err := f.repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, stored.Status)
}
