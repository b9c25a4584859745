package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type OrderStore struct {
	base
	byID map[primitive.ObjectID]models.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{byID: map[primitive.ObjectID]models.Order{}}
}

func (s *OrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	s.byID[order.ID] = cloneOrder(*order)
	return nil
}

func (s *OrderStore) Get(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) find(match func(models.Order) bool) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.byID {
		if match(o) {
			return cloneOrder(o), nil
		}
	}
	return models.Order{}, store.ErrNotFound
}

func (s *OrderStore) GetByRef(_ context.Context, ref string) (models.Order, error) {
	return s.find(func(o models.Order) bool { return o.Ref == ref })
}

func (s *OrderStore) GetByPaymentRef(_ context.Context, paymentRef string) (models.Order, error) {
	return s.find(func(o models.Order) bool { return paymentRef != "" && o.PaymentRef == paymentRef })
}

func (s *OrderStore) List(_ context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.Order, 0)
	for _, o := range s.byID {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	newestFirst(matched, func(o models.Order) time.Time { return o.CreatedAt })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (s *OrderStore) Update(_ context.Context, id primitive.ObjectID, patch models.OrderPatch) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentRef != nil {
		o.PaymentRef = *patch.PaymentRef
	}
	if patch.PaymentURL != nil {
		o.PaymentURL = *patch.PaymentURL
	}
	o.UpdatedAt = time.Now()
	s.byID[id] = o
	return cloneOrder(o), nil
}

func (s *OrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *OrderStore) Statistics(_ context.Context) (models.OrderStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := store.NewStatistics()
	for _, o := range s.byID {
		b.Add(o.Status, o.PaymentStatus, 1, o.Amount)
	}
	return b.Result(), nil
}
