// Package mongostore implements the store ports on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"grocery-backend/internal/store"
)

const (
	addressesCollection     = "addresses"
	cartsCollection         = "carts"
	productsCollection      = "products"
	categoriesCollection    = "categories"
	ordersCollection        = "orders"
	notificationsCollection = "notifications"
	usersCollection         = "users"
	refreshTokensCollection = "refresh_tokens"
)

// New wires every store port to collections of db.
func New(db *mongo.Database) store.Stores {
	return store.Stores{
		Addresses:     NewAddressStore(db),
		Carts:         NewCartStore(db),
		Products:      NewProductStore(db),
		Categories:    NewCategoryStore(db),
		Orders:        NewOrderStore(db),
		Notifications: NewNotificationStore(db),
		Users:         NewUserStore(db),
		RefreshTokens: NewRefreshTokenStore(db),
		Ping: func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return db.Client().Ping(checkCtx, readpref.Primary())
		},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

func pageOptions(page, limit int64) (skip int64, size int64, ok bool) {
	if page < 1 || limit < 1 {
		return 0, 0, false
	}
	return (page - 1) * limit, limit, true
}
