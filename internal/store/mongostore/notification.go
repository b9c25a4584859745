package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type NotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(db *mongo.Database) *NotificationStore {
	return &NotificationStore{coll: db.Collection(notificationsCollection)}
}

func (s *NotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	res, err := s.coll.InsertOne(ctx, notification)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		notification.ID = id
	}
	return nil
}

func (s *NotificationStore) ListByRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"recipient": recipient}
	if unreadOnly {
		filter["isRead"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, recipient string) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"recipient": recipient, "isRead": false})
}

func (s *NotificationStore) MarkRead(ctx context.Context, recipient string, id primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *NotificationStore) DeleteRead(ctx context.Context, recipient string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"recipient": recipient, "isRead": true})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
