package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-backend/internal/models"
)

type CartStore struct {
	coll *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{coll: db.Collection(cartsCollection)}
}

func (s *CartStore) Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// Save replaces the user's cart lines; the whole cart is one document so the
// write is atomic.
func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = time.Now()
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": cart.UserID},
		bson.M{"$set": bson.M{
			"items":     cart.Items,
			"updatedAt": cart.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

func (s *CartStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{
			"items":     []models.CartItem{},
			"updatedAt": time.Now(),
		}},
	)
	return err
}
