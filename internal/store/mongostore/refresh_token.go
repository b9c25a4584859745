package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"grocery-backend/internal/models"
)

type RefreshTokenStore struct {
	coll *mongo.Collection
}

func NewRefreshTokenStore(db *mongo.Database) *RefreshTokenStore {
	return &RefreshTokenStore{coll: db.Collection(refreshTokensCollection)}
}

func (s *RefreshTokenStore) Create(ctx context.Context, token *models.RefreshToken) error {
	res, err := s.coll.InsertOne(ctx, token)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		token.ID = id
	}
	return nil
}

func (s *RefreshTokenStore) FindActive(ctx context.Context, hash string) (models.RefreshToken, error) {
	var token models.RefreshToken
	err := s.coll.FindOne(ctx, bson.M{"tokenHash": hash, "revoked": false}).Decode(&token)
	return token, translate(err)
}

func (s *RefreshTokenStore) Revoke(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	set := bson.M{"revoked": true, "revokedAt": time.Now()}
	if replacedBy != nil {
		set["replacedBy"] = *replacedBy
	}
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

func (s *RefreshTokenStore) RevokeByHash(ctx context.Context, hash string) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"tokenHash": hash, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true, "revokedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
