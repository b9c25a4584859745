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

type AddressStore struct {
	coll *mongo.Collection
}

func NewAddressStore(db *mongo.Database) *AddressStore {
	return &AddressStore{coll: db.Collection(addressesCollection)}
}

func (s *AddressStore) Create(ctx context.Context, address *models.Address) error {
	res, err := s.coll.InsertOne(ctx, address)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		address.ID = id
	}
	return nil
}

func (s *AddressStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "isDefault", Value: -1},
		{Key: "createdAt", Value: -1},
	})

	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	addresses := make([]models.Address, 0)
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AddressStore) Get(ctx context.Context, userID, id primitive.ObjectID) (models.Address, error) {
	var address models.Address
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&address)
	return address, translate(err)
}

func (s *AddressStore) Update(ctx context.Context, address *models.Address) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": address.ID, "userId": address.UserID},
		bson.M{"$set": bson.M{
			"description": address.Description,
			"city":        address.City,
			"street":      address.Street,
			"district":    address.District,
			"postalCode":  address.PostalCode,
			"phone":       address.Phone,
			"notes":       address.Notes,
			"isDefault":   address.IsDefault,
			"updatedAt":   address.UpdatedAt,
		}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AddressStore) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AddressStore) ClearDefault(ctx context.Context, userID, keep primitive.ObjectID) error {
	filter := bson.M{"userId": userID, "isDefault": true}
	if !keep.IsZero() {
		filter["_id"] = bson.M{"$ne": keep}
	}
	_, err := s.coll.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"isDefault": false, "updatedAt": time.Now()},
	})
	return err
}

func (s *AddressStore) MarkDefault(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isDefault": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
