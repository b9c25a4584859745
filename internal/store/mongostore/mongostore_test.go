package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

func TestNormalizeProductDocumentLegacyShapes(t *testing.T) {
	p, err := normalizeProductDocument(bson.M{
		"_id":         primitive.NewObjectID(),
		"name":        "Ayran",
		"price":       12.5,
		"saleEnabled": true,
		"salePrice":   9.9,
		"category":    "İçecek",
		"stock":       3.0,
		"isCampaign":  "true",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"İçecek"}, []string(p.Category))
	assert.Equal(t, 3, p.Stock)
	assert.True(t, p.InStock)
	assert.True(t, p.IsCampaign)
	assert.True(t, p.IsOnSale)

	p, err = normalizeProductDocument(bson.M{"name": "Su", "price": 5.0})
	require.NoError(t, err)
	assert.Zero(t, p.Stock)
	assert.False(t, p.InStock)
	assert.False(t, p.IsCampaign)
}

func TestProductFilter(t *testing.T) {
	active := false
	query := productFilter(models.ProductFilter{IsActive: &active, Category: "Süt", Search: "a+b"})

	assert.Equal(t, false, query["isActive"])
	assert.Equal(t, bson.M{"$in": []string{"Süt"}}, query["category"])
	or, ok := query["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 4)
	assert.Equal(t, `a\+b`, or[0]["name"].(bson.M)["$regex"])

	query = productFilter(models.ProductFilter{ActiveOnly: true, CampaignOnly: true})
	assert.Equal(t, bson.M{"$ne": false}, query["isActive"])
	assert.Equal(t, true, query["isCampaign"])
}

func TestPageOptions(t *testing.T) {
	skip, size, ok := pageOptions(3, 20)
	assert.True(t, ok)
	assert.EqualValues(t, 40, skip)
	assert.EqualValues(t, 20, size)

	_, _, ok = pageOptions(0, 20)
	assert.False(t, ok)
}

func TestStoresAgainstMockServer(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("decrement stock reports whether a document matched", func(mt *mtest.T) {
		products := NewProductStore(mt.DB)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		ok, err := products.DecrementStock(ctx, primitive.NewObjectID(), 2)
		require.NoError(t, err)
		assert.True(t, ok)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		ok, err = products.DecrementStock(ctx, primitive.NewObjectID(), 2)
		require.NoError(t, err)
		assert.False(t, ok, "insufficient stock matches nothing")
	})

	mt.Run("missing order maps to store.ErrNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.orders", mtest.FirstBatch))
		_, err := NewOrderStore(mt.DB).GetByRef(ctx, "ORD-20260101-000000000000")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	mt.Run("duplicate email maps to store.ErrDuplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: db.users index: email_unique",
		}))
		err := NewUserStore(mt.DB).Create(ctx, &models.User{Email: "ayse@example.com"})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	mt.Run("order is decoded by ref", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "db.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "ref", Value: "ORD-20260101-abcdefabcdef"},
			{Key: "amount", Value: 89.7},
			{Key: "status", Value: "processing"},
			{Key: "paymentStatus", Value: "pending"},
			{Key: "paymentType", Value: "cash"},
		}))
		order, err := NewOrderStore(mt.DB).GetByRef(ctx, "ORD-20260101-abcdefabcdef")
		require.NoError(t, err)
		assert.Equal(t, id, order.ID)
		assert.Equal(t, models.OrderStatusProcessing, order.Status)
		assert.InDelta(t, 89.7, order.Amount, 0.0001)
	})
}
