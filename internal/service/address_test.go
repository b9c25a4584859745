package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"grocery-backend/internal/lock"
	"grocery-backend/internal/models"
	"grocery-backend/internal/store/memstore"
)

func countDefaults(t *testing.T, list []models.Address) int {
	t.Helper()
	n := 0
	for _, a := range list {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestCreateAddressValidation(t *testing.T) {
	f := newFixture(t, StrictPolicy)

	_, err := f.addresses.Create(context.Background(), primitive.NewObjectID(), AddressInput{Description: "  ", City: "İzmir"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"description": "required", "street": "required", "district": "required"}, verr.Fields)
}

func TestCreateDefaultAddressClearsOthers(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	first, err := f.addresses.Create(ctx, userID, AddressInput{Description: "Home", City: "A", Street: "S", District: "D", IsDefault: true})
	require.NoError(t, err)
	_, err = f.addresses.Create(ctx, other, AddressInput{Description: "Other", City: "A", Street: "S", District: "D", IsDefault: true})
	require.NoError(t, err)
	second, err := f.addresses.Create(ctx, userID, AddressInput{Description: "Work", City: "B", Street: "S", District: "D", IsDefault: true})
	require.NoError(t, err)

	list, err := f.addresses.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, countDefaults(t, list))
	assert.Equal(t, second.ID, list[0].ID, "default address is listed first")
	assert.NotEqual(t, first.ID, list[0].ID)

	otherList, err := f.addresses.List(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(t, otherList), "another user's default is untouched")
}

func TestUpdateAddress(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	a := f.address(t, userID)
	b := f.address(t, userID)
	_, err := f.addresses.SetDefault(ctx, userID, a.ID)
	require.NoError(t, err)

	updated, err := f.addresses.Update(ctx, userID, b.ID, AddressInput{
		Description: " Office ", City: "Ankara", Street: "Atatürk Blv. 5", District: "Çankaya", PostalCode: "06690", IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Office", updated.Description)
	assert.True(t, updated.IsDefault)

	list, err := f.addresses.List(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(t, list))
	assert.Equal(t, b.ID, list[0].ID)

	_, err = f.addresses.Update(ctx, primitive.NewObjectID(), b.ID, AddressInput{Description: "x", City: "x", Street: "x", District: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetDefaultSequential(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	addresses := []models.Address{f.address(t, userID), f.address(t, userID), f.address(t, userID)}
	for _, a := range append(addresses, addresses[0]) {
		got, err := f.addresses.SetDefault(ctx, userID, a.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDefault)

		list, err := f.addresses.List(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, 1, countDefaults(t, list))
		assert.Equal(t, a.ID, list[0].ID)
	}
}

func TestSetDefaultRejectsForeignAddress(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	owner := primitive.NewObjectID()
	a := f.address(t, owner)

	_, err := f.addresses.SetDefault(context.Background(), primitive.NewObjectID(), a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.addresses.SetDefault(context.Background(), owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAddress(t *testing.T) {
	f := newFixture(t, StrictPolicy)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	a := f.address(t, owner)

	assert.ErrorIs(t, f.addresses.Delete(ctx, primitive.NewObjectID(), a.ID), ErrNotFound)
	require.NoError(t, f.addresses.Delete(ctx, owner, a.ID))
	assert.ErrorIs(t, f.addresses.Delete(ctx, owner, a.ID), ErrNotFound)
}

func concurrentSetDefault(t *testing.T, locker lock.Locker) int {
	t.Helper()
	ctx := context.Background()
	svc := NewAddressService(memstore.NewAddressStore(), locker, zaptest.NewLogger(t))
	userID := primitive.NewObjectID()

	var ids []primitive.ObjectID
	for i := 0; i < 2; i++ {
		a, err := svc.Create(ctx, userID, AddressInput{Description: "A", City: "C", Street: "S", District: "D"})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, id := range ids {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			<-start
			_, err := svc.SetDefault(ctx, userID, id)
			assert.NoError(t, err)
		}(id)
	}
	close(start)
	wg.Wait()

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	return countDefaults(t, list)
}

func TestConcurrentSetDefaultWithLockLeavesOneDefault(t *testing.T) {
	for i := 0; i < 50; i++ {
		require.Equal(t, 1, concurrentSetDefault(t, lock.NewMutexLocker()))
	}
}

// Without a lock the clear-then-mark sequence can interleave; the outcome
// depends on scheduling.
func TestConcurrentSetDefaultWithoutLockIsUnordered(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := concurrentSetDefault(t, lock.Nop{})
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 2)
	}
}
