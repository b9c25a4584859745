package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(ordersCollection)}
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	res, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (s *OrderStore) findOne(ctx context.Context, filter bson.M) (models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, filter).Decode(&order)
	return order, translate(err)
}

func (s *OrderStore) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *OrderStore) GetByRef(ctx context.Context, ref string) (models.Order, error) {
	return s.findOne(ctx, bson.M{"ref": ref})
}

func (s *OrderStore) GetByPaymentRef(ctx context.Context, paymentRef string) (models.Order, error) {
	return s.findOne(ctx, bson.M{"paymentRef": paymentRef})
}

func (s *OrderStore) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["userId"] = *filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		query["paymentStatus"] = filter.PaymentStatus
	}

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if skip, limit, ok := pageOptions(filter.Page, filter.Limit); ok {
		opts.SetSkip(skip).SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *OrderStore) Update(ctx context.Context, id primitive.ObjectID, patch models.OrderPatch) (models.Order, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		set["paymentStatus"] = *patch.PaymentStatus
	}
	if patch.PaymentRef != nil {
		set["paymentRef"] = *patch.PaymentRef
	}
	if patch.PaymentURL != nil {
		set["paymentUrl"] = *patch.PaymentURL
	}

	var updated models.Order
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	return updated, translate(err)
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type statisticsBucket struct {
	Status        models.OrderStatus   `bson:"status"`
	PaymentStatus models.PaymentStatus `bson:"paymentStatus"`
	Count         int64                `bson:"count"`
	Amount        float64              `bson:"amount"`
}

// Statistics groups orders by (status, paymentStatus) in one pass and folds
// the buckets into the dashboard counters.
func (s *OrderStore) Statistics(ctx context.Context) (models.OrderStatistics, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "status", Value: "$status"},
				{Key: "paymentStatus", Value: "$paymentStatus"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "amount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "status", Value: "$_id.status"},
			{Key: "paymentStatus", Value: "$_id.paymentStatus"},
			{Key: "count", Value: 1},
			{Key: "amount", Value: 1},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.OrderStatistics{}, err
	}
	defer cursor.Close(ctx)

	var buckets []statisticsBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return models.OrderStatistics{}, err
	}

	stats := store.NewStatistics()
	for _, b := range buckets {
		stats.Add(b.Status, b.PaymentStatus, b.Count, b.Amount)
	}
	return stats.Result(), nil
}
