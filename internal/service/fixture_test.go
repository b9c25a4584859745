package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"grocery-backend/internal/lock"
	"grocery-backend/internal/models"
	"grocery-backend/internal/notify"
	"grocery-backend/internal/store"
	"grocery-backend/internal/store/memstore"
)

type recordingPublisher struct {
	messages map[string][]notify.Message
}

func (p *recordingPublisher) Publish(recipient string, msg notify.Message) {
	if p.messages == nil {
		p.messages = map[string][]notify.Message{}
	}
	p.messages[recipient] = append(p.messages[recipient], msg)
}

type fixture struct {
	stores        store.Stores
	gateway       *MockPaymentGateway
	publisher     *recordingPublisher
	addresses     *AddressService
	carts         *CartService
	orders        *OrderService
	notifications *NotificationService
	catalog       *CatalogService
}

func newFixture(t *testing.T, policy StatusPolicy) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	stores := memstore.New()
	locker := lock.NewMutexLocker()
	publisher := &recordingPublisher{}
	gateway := NewMockPaymentGateway(gomock.NewController(t))
	notifications := NewNotificationService(stores.Notifications, publisher, log)

	return &fixture{
		stores:        stores,
		gateway:       gateway,
		publisher:     publisher,
		addresses:     NewAddressService(stores.Addresses, locker, log),
		carts:         NewCartService(stores.Carts, stores.Products, log),
		notifications: notifications,
		catalog:       NewCatalogService(stores.Products, stores.Categories, log),
		orders: NewOrderService(OrderDeps{
			Orders:        stores.Orders,
			Carts:         stores.Carts,
			Products:      stores.Products,
			Addresses:     stores.Addresses,
			Users:         stores.Users,
			Gateway:       gateway,
			Notifications: notifications,
			Locker:        locker,
			Policy:        policy,
			Log:           log,
		}),
	}
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:      name,
		Price:     price,
		Stock:     stock,
		IsActive:  true,
		ImagePath: "uploads/products/" + name + ".png",
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.stores.Products.Create(context.Background(), &p))
	return p
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.stores.Products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) setPrice(t *testing.T, id primitive.ObjectID, price float64) {
	t.Helper()
	p, err := f.stores.Products.Get(context.Background(), id)
	require.NoError(t, err)
	p.Price = price
	require.NoError(t, f.stores.Products.Update(context.Background(), &p))
}

func (f *fixture) user(t *testing.T) models.User {
	t.Helper()
	u := models.User{
		Email:    primitive.NewObjectID().Hex() + "@example.com",
		Name:     "Ayşe Yılmaz",
		Phone:    "+905551112233",
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	require.NoError(t, f.stores.Users.Create(context.Background(), &u))
	return u
}

func (f *fixture) address(t *testing.T, userID primitive.ObjectID) models.Address {
	t.Helper()
	a, err := f.addresses.Create(context.Background(), userID, AddressInput{
		Description: "Home",
		City:        "İzmir",
		Street:      "Kıbrıs Şehitleri Cd. 12",
		District:    "Alsancak",
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.stores.Orders.List(context.Background(), models.OrderFilter{})
	require.NoError(t, err)
	return total
}

func admin() Principal {
	return Principal{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
}
