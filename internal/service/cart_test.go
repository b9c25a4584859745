package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartAddIncrementsExistingLine(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	milk := f.product(t, "milk", 24.90, 10)

	_, err := f.carts.Add(ctx, userID, milk.ID, 1)
	require.NoError(t, err)
	view, err := f.carts.Add(ctx, userID, milk.ID, 2)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, 3, view.TotalQuantity)
	assert.Equal(t, 74.70, view.Total)
}

func TestCartTotalFollowsLivePrice(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	a := f.product(t, "apple", 0.1, 100)
	b := f.product(t, "bread", 0.2, 100)

	_, err := f.carts.Add(ctx, userID, a.ID, 3)
	require.NoError(t, err)
	view, err := f.carts.Add(ctx, userID, b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, view.Total)

	f.setPrice(t, a.ID, 1.25)

	view, err = f.carts.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3.95, view.Total)
	assert.Equal(t, 1.25, view.Lines[0].UnitPrice)
	assert.Equal(t, 3.75, view.Lines[0].Subtotal)
}

func TestCartUsesSalePrice(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	p := f.product(t, "cheese", 100, 5)
	p.SaleEnabled = true
	p.SalePrice = 79.99
	require.NoError(t, f.stores.Products.Update(ctx, &p))

	view, err := f.carts.Add(ctx, userID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 159.98, view.Total)
}

func TestCartAddRejections(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	scarce := f.product(t, "saffron", 500, 1)
	hidden := f.product(t, "hidden", 5, 10)
	hidden.IsActive = false
	require.NoError(t, f.stores.Products.Update(ctx, &hidden))

	var verr *ValidationError
	_, err := f.carts.Add(ctx, userID, scarce.ID, 2)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["quantity"], "only 1 available")

	_, err = f.carts.Add(ctx, userID, scarce.ID, 0)
	require.ErrorAs(t, err, &verr)

	_, err = f.carts.Add(ctx, userID, hidden.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.carts.Add(ctx, userID, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartSetQuantityAndRemove(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	eggs := f.product(t, "eggs", 3.5, 30)
	tea := f.product(t, "tea", 40, 30)

	_, err := f.carts.Add(ctx, userID, eggs.ID, 1)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, userID, tea.ID, 1)
	require.NoError(t, err)

	view, err := f.carts.SetQuantity(ctx, userID, eggs.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, view.Lines[0].Quantity)
	assert.Equal(t, 82.0, view.Total)

	view, err = f.carts.SetQuantity(ctx, userID, eggs.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, tea.ID, view.Lines[0].ProductID)

	view, err = f.carts.Remove(ctx, userID, tea.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Zero(t, view.Total)

	_, err = f.carts.Remove(ctx, userID, tea.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartDropsDeletedProducts(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	gone := f.product(t, "gone", 10, 5)
	kept := f.product(t, "kept", 2, 5)

	_, err := f.carts.Add(ctx, userID, gone.ID, 1)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, userID, kept.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.stores.Products.SoftDelete(ctx, gone.ID))

	view, err := f.carts.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 4.0, view.Total)

	require.NoError(t, f.carts.Clear(ctx, userID))
	view, err = f.carts.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}
