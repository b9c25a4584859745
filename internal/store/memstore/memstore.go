// Package memstore keeps every store port in process memory. It backs the
// service and handler tests and STORAGE_DRIVER=memory for local runs.
// Values are copied on the way in and out so callers never share slices
// with the store.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

// New returns a fresh set of empty stores.
func New() store.Stores {
	return store.Stores{
		Addresses:     NewAddressStore(),
		Carts:         NewCartStore(),
		Products:      NewProductStore(),
		Categories:    NewCategoryStore(),
		Orders:        NewOrderStore(),
		Notifications: NewNotificationStore(),
		Users:         NewUserStore(),
		RefreshTokens: NewRefreshTokenStore(),
	}
}

type base struct {
	mu sync.RWMutex
}

func paginate[T any](items []T, page, limit int64) []T {
	if page < 1 || limit < 1 {
		return items
	}
	start := (page - 1) * limit
	if start >= int64(len(items)) {
		return []T{}
	}
	end := start + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}

func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func cloneProduct(p models.Product) models.Product {
	p.Category = append(models.StringList(nil), p.Category...)
	return p
}
