package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

func seededService(t *testing.T) (*Service, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, WithClock(func() time.Time { return fixed }))
	count, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(sampleCatalog), count)
	return svc, repo
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestList_DefaultsToFirstPageOfTwelveNewestFirst(t *testing.T) {
	svc, _ := seededService(t)

	page, err := svc.List(context.Background(), ports.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.Limit)
	assert.Equal(t, int64(len(sampleCatalog)), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.NotEmpty(t, page.Products)
	assert.Equal(t, "Black Roll-Top Backpack", page.Products[0].Title)
}

func TestList_FiltersAndSorts(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	page, err := svc.List(ctx, ports.ListInput{Category: "Bags", Sort: "price-low"})
	require.NoError(t, err)
	require.Len(t, page.Products, 3)
	assert.Equal(t, "Tan Crossbody Bag", page.Products[0].Title)
	assert.Equal(t, "Black Roll-Top Backpack", page.Products[2].Title)

	page, err = svc.List(ctx, ports.ListInput{Search: "dinosaur", Sort: "bestselling"})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Yellow Dinosaur Plush", page.Products[0].Title)

	page, err = svc.List(ctx, ports.ListInput{MinPrice: dec("20"), MaxPrice: dec("30")})
	require.NoError(t, err)
	for _, p := range page.Products {
		assert.True(t, p.Price.GreaterThanOrEqual(decimal.NewFromInt(20)), p.Title)
		assert.True(t, p.Price.LessThanOrEqual(decimal.NewFromInt(30)), p.Title)
	}

	page, err = svc.List(ctx, ports.ListInput{Size: "xl"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Brown Belt", page.Products[0].Title)

	page, err = svc.List(ctx, ports.ListInput{Brand: "canvas lab", Category: AllCategories})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
}

func TestList_Paginates(t *testing.T) {
	svc, _ := seededService(t)

	page, err := svc.List(context.Background(), ports.ListInput{Page: 3, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Products, len(sampleCatalog)-8)

	page, err = svc.List(context.Background(), ports.ListInput{Page: 9, Limit: 4})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

func TestList_RejectsBadInput(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, ports.ListInput{Sort: "cheapest"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.List(ctx, ports.ListInput{MinPrice: dec("50"), MaxPrice: dec("10")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePrice(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()
	page, err := svc.List(ctx, ports.ListInput{Search: "Brown Belt"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	id := page.Products[0].ID

	updated, err := svc.UpdatePrice(ctx, id, decimal.RequireFromString("39.5"))
	require.NoError(t, err)
	assert.Equal(t, "39.5", updated.Price.String())

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("39.50")))

	_, err = svc.UpdatePrice(ctx, id, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdatePrice(ctx, "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSeed_ReplacesCatalog(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()
	before, err := svc.Get(ctx, SeedID("Black Roll-Top Backpack"))
	require.NoError(t, err)
	_, err = svc.Seed(ctx)
	require.NoError(t, err)

	after, err := svc.Get(ctx, before.ID)
	require.NoError(t, err, "reseeding keeps product ids stable")
	assert.Equal(t, before.Slug, after.Slug)

	page, err := svc.List(ctx, ports.ListInput{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleCatalog)), page.Total)
	assert.Equal(t, "black-roll-top-backpack", page.Products[0].Slug)
}
