// Package store declares the persistence ports used by the services. The
// mongostore package is the production implementation; memstore keeps the
// same contract in process memory for tests and local runs.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type AddressStore interface {
	Create(ctx context.Context, address *models.Address) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	// Get only matches an address owned by userID.
	Get(ctx context.Context, userID, id primitive.ObjectID) (models.Address, error)
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
	// ClearDefault unsets isDefault on every address of the user except
	// keep (pass primitive.NilObjectID to clear all).
	ClearDefault(ctx context.Context, userID, keep primitive.ObjectID) error
	MarkDefault(ctx context.Context, userID, id primitive.ObjectID) error
}

type CartStore interface {
	// Get returns an empty cart for users that never had one.
	Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type ProductStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock succeeds only when at least qty units are available.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type CategoryStore interface {
	List(ctx context.Context, isActive *bool) ([]models.Category, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	ExistsByName(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	// Deactivate hides a category from the storefront; categories are
	// never removed because products reference them by name.
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	GetByRef(ctx context.Context, ref string) (models.Order, error)
	GetByPaymentRef(ctx context.Context, paymentRef string) (models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.OrderPatch) (models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Statistics(ctx context.Context) (models.OrderStatistics, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipient string) (int64, error)
	MarkRead(ctx context.Context, recipient string, id primitive.ObjectID) error
	DeleteRead(ctx context.Context, recipient string) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindActive(ctx context.Context, hash string) (models.RefreshToken, error)
	Revoke(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error
	RevokeByHash(ctx context.Context, hash string) (bool, error)
}

// Stores bundles every port so wiring code can pass one value around.
type Stores struct {
	Addresses     AddressStore
	Carts         CartStore
	Products      ProductStore
	Categories    CategoryStore
	Orders        OrderStore
	Notifications NotificationStore
	Users         UserStore
	RefreshTokens RefreshTokenStore

	// Ping reports store availability; nil means always available.
	Ping func(ctx context.Context) error
}
