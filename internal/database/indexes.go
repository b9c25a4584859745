package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{collection: "products", models: []mongo.IndexModel{{
			Keys: bson.D{{Key: "barcode", Value: 1}},
			Options: options.Index().
				SetName("barcode_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"barcode": bson.M{"$exists": true}}),
		}}},
		{collection: "users", models: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		}}},
		{collection: "orders", models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("userId_createdAt"),
			},
			{
				Keys:    bson.D{{Key: "ref", Value: 1}},
				Options: options.Index().SetName("ref_unique").SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "paymentRef", Value: 1}},
				Options: options.Index().
					SetName("paymentRef_index").
					SetPartialFilterExpression(bson.M{"paymentRef": bson.M{"$exists": true}}),
			},
		}},
		{collection: "addresses", models: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		}}},
		{collection: "carts", models: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_unique").SetUnique(true),
		}}},
		{collection: "notifications", models: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}},
			Options: options.Index().SetName("recipient_isRead"),
		}}},
		{collection: "refresh_tokens", models: []mongo.IndexModel{{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetName("tokenHash_index"),
		}}},
	}
}

// EnsureIndexes creates every index the stores rely on. A failing collection
// is logged and reported but does not stop the remaining ones.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var errs []error
	for _, plan := range indexPlan() {
		if err := ensureCollection(ctx, db, plan, log); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func ensureCollection(ctx context.Context, db *mongo.Database, plan collectionIndexes, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models)
	if err != nil {
		log.Warn("index creation failed", zap.String("collection", plan.collection), zap.Error(err))
		return fmt.Errorf("%s indexes: %w", plan.collection, err)
	}
	log.Info("indexes ensured", zap.String("collection", plan.collection), zap.Strings("indexes", names))
	return nil
}
