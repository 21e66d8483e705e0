//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/platform/postgres/postgrestest"
)

func newTestOrder(t *testing.T, userID string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(userID, domain.StatusCompleted, []domain.Item{
		{ProductID: "p-backpack", Quantity: 2, Price: decimal.RequireFromString("79.99")},
		{ProductID: "p-plush", Quantity: 1, Price: decimal.RequireFromString("29.99")},
	})
	require.NoError(t, err)
	return order
}

func TestRepository_CreateKeepsItemOrderAndPayment(t *testing.T) {
	db := postgrestest.Start(t, Models()...)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "u1")
	order.AttachPayment("stripe", "pi_1", "cs_1", &domain.Address{City: "Berlin", Country: "DE"})
	order.Charged = &domain.Charge{Amount: decimal.RequireFromString("172.87"), Currency: "EUR"}
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	stored, err := repo.FindBySession(ctx, "u1", "cs_1")
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("189.97")))
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "p-backpack", stored.Items[0].ProductID)
	assert.Equal(t, "p-plush", stored.Items[1].ProductID)
	require.NotNil(t, stored.ShippingAddress)
	assert.Equal(t, "Berlin", stored.ShippingAddress.City)
	require.NotNil(t, stored.Charged)
	assert.Equal(t, "EUR", stored.Charged.Currency)

	_, err = repo.FindBySession(ctx, "someone-else", "cs_1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateStatusOnly(t *testing.T) {
	db := postgrestest.Start(t, Models()...)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestOrder(t, "u1"))
	require.NoError(t, err)
	require.NoError(t, created.Transition(domain.StatusFulfilled))

	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, updated.Status)
	assert.Len(t, updated.Items, 2)

	orders, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	missing := newTestOrder(t, "u1")
	_, err = repo.Update(ctx, missing)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
