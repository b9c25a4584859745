package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func (f *fixture) category(t *testing.T, name string) models.Category {
	t.Helper()
	c, err := f.catalog.CreateCategory(context.Background(), name, nil)
	require.NoError(t, err)
	return c
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	dairy := f.category(t, "Dairy")
	breakfast := f.category(t, "Breakfast")

	p, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Name:        ptr(" Yogurt "),
		Price:       ptr(40.0),
		SaleEnabled: ptr(true),
		SalePrice:   ptr(32.5),
		CategoryIDs: []string{dairy.ID.Hex(), breakfast.ID.Hex(), dairy.ID.Hex()},
		Barcode:     ptr("869000"),
		Stock:       ptr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Yogurt", p.Name)
	assert.Equal(t, models.StringList{"Dairy", "Breakfast"}, p.Category)
	assert.True(t, p.IsActive)
	assert.True(t, p.IsOnSale)
	assert.True(t, p.InStock)

	_, err = f.catalog.CreateProduct(context.Background(), ProductInput{
		Name: ptr("Other"), Price: ptr(1.0), Stock: ptr(1),
		CategoryIDs: []string{dairy.ID.Hex()}, Barcode: ptr("869000"),
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	dairy := f.category(t, "Dairy")

	cases := map[string]ProductInput{
		"missing fields": {},
		"zero price":     {Name: ptr("x"), Price: ptr(0.0), Stock: ptr(1), CategoryIDs: []string{dairy.ID.Hex()}},
		"sale above price": {
			Name: ptr("x"), Price: ptr(10.0), Stock: ptr(1), CategoryIDs: []string{dairy.ID.Hex()},
			SaleEnabled: ptr(true), SalePrice: ptr(12.0),
		},
		"no category":      {Name: ptr("x"), Price: ptr(10.0), Stock: ptr(1)},
		"bad category":     {Name: ptr("x"), Price: ptr(10.0), Stock: ptr(1), CategoryIDs: []string{"zzz"}},
		"unknown category": {Name: ptr("x"), Price: ptr(10.0), Stock: ptr(1), CategoryIDs: []string{primitive.NewObjectID().Hex()}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.catalog.CreateProduct(context.Background(), in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	p := f.product(t, "cheese", 120, 3)

	updated, previous, err := f.catalog.UpdateProduct(ctx, p.ID, ProductInput{
		Price:       ptr(100.0),
		SaleEnabled: ptr(true),
		SalePrice:   ptr(90.0),
		ImagePath:   ptr("uploads/products/new.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ImagePath, previous)
	assert.Equal(t, 100.0, updated.Price)
	assert.True(t, updated.IsOnSale)
	assert.Equal(t, 3, updated.Stock)

	updated, previous, err = f.catalog.UpdateProduct(ctx, p.ID, ProductInput{SaleEnabled: ptr(false), Stock: ptr(0)})
	require.NoError(t, err)
	assert.Empty(t, previous)
	assert.Zero(t, updated.SalePrice, "disabling the sale clears its price")
	assert.False(t, updated.InStock)

	_, _, err = f.catalog.UpdateProduct(ctx, p.ID, ProductInput{Name: ptr("  ")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, _, err = f.catalog.UpdateProduct(ctx, primitive.NewObjectID(), ProductInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogListings(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	f.product(t, "apple", 5, 10)
	hidden := f.product(t, "pear", 6, 10)
	_, _, err := f.catalog.UpdateProduct(ctx, hidden.ID, ProductInput{IsActive: ptr(false)})
	require.NoError(t, err)
	promo := f.product(t, "plum", 7, 10)
	_, _, err = f.catalog.UpdateProduct(ctx, promo.ID, ProductInput{IsCampaign: ptr(true)})
	require.NoError(t, err)
	gone := f.product(t, "kiwi", 8, 10)
	require.NoError(t, f.catalog.DeleteProduct(ctx, gone.ID))

	public, total, err := f.catalog.ListPublic(ctx, models.ProductFilter{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "storefront ignores the active filter")
	assert.Len(t, public, 2)

	all, total, err := f.catalog.ListAdmin(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	campaign, total, err := f.catalog.ListCampaign(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "plum", campaign[0].Name)

	_, err = f.catalog.GetProduct(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, gone.ID), ErrNotFound)
}

func TestCategories(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	fruit := f.category(t, "Fruit")
	f.category(t, "Veg")

	_, err := f.catalog.CreateCategory(ctx, "Fruit", nil)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.catalog.UpdateCategory(ctx, fruit.ID, ptr("Veg"), nil)
	assert.ErrorIs(t, err, ErrConflict)

	renamed, err := f.catalog.UpdateCategory(ctx, fruit.ID, ptr(" Fresh fruit "), nil)
	require.NoError(t, err)
	assert.Equal(t, "Fresh fruit", renamed.Name)

	require.NoError(t, f.catalog.DeactivateCategory(ctx, fruit.ID))
	active, err := f.catalog.ListCategories(ctx, ptr(true))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Veg", active[0].Name)

	assert.ErrorIs(t, f.catalog.DeactivateCategory(ctx, primitive.NewObjectID()), ErrNotFound)
}
