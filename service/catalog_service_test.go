package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokalrunner/pkg/models"
)

func TestCreateProductValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewCatalogService(store, testLogger())
	ctx := context.Background()

	provider := seedClient(t, store, "provider@test", "")

	tests := []struct {
		name    string
		product models.Product
	}{
		{"missing name", models.Product{Price: decimal.RequireFromString("1.00"), Stock: 1}},
		{"zero price", models.Product{Name: "Free", Price: decimal.Zero, Stock: 1}},
		{"negative price", models.Product{Name: "Loss", Price: decimal.RequireFromString("-1"), Stock: 1}},
		{"negative stock", models.Product{Name: "Debt", Price: decimal.RequireFromString("1.00"), Stock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.product.ProviderID = provider.ID
			tt.product.CityID = 1
			_, err := svc.CreateProduct(ctx, &tt.product)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	created, err := svc.CreateProduct(ctx, &models.Product{
		ProviderID: provider.ID,
		CityID:     1,
		Name:       "Olive oil",
		Price:      decimal.RequireFromString("12.50"),
		Stock:      4,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestCatalogListing(t *testing.T) {
	store := newFakeStore()
	svc := NewCatalogService(store, testLogger())
	ctx := context.Background()

	madrid, err := svc.CreateCity(ctx, "Madrid", "madrid")
	require.NoError(t, err)
	barcelona, err := svc.CreateCity(ctx, "Barcelona", "barcelona")
	require.NoError(t, err)

	_, err = svc.CreateCity(ctx, "", "oops")
	require.ErrorIs(t, err, ErrInvalidRequest)

	cities, err := svc.Cities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 2)

	providerA := seedClient(t, store, "a@test", "")
	providerB := seedClient(t, store, "b@test", "")
	seedProduct(t, store, providerA.ID, madrid.ID, "Bread", "1.20", 5)
	seedProduct(t, store, providerA.ID, barcelona.ID, "Cava", "8.00", 5)
	seedProduct(t, store, providerB.ID, madrid.ID, "Cheese", "4.50", 5)

	inMadrid, err := svc.ProductsByCity(ctx, madrid.ID)
	require.NoError(t, err)
	assert.Len(t, inMadrid, 2)

	fromA, err := svc.ProductsByProvider(ctx, providerA.ID)
	require.NoError(t, err)
	assert.Len(t, fromA, 2)
}
