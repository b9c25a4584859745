package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type AddressStore struct {
	base
	byID map[primitive.ObjectID]models.Address
}

func NewAddressStore() *AddressStore {
	return &AddressStore{byID: map[primitive.ObjectID]models.Address{}}
}

func (s *AddressStore) Create(_ context.Context, address *models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}
	s.byID[address.ID] = *address
	return nil
}

func (s *AddressStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Address, 0)
	for _, a := range s.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *AddressStore) Get(_ context.Context, userID, id primitive.ObjectID) (models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok || a.UserID != userID {
		return models.Address{}, store.ErrNotFound
	}
	return a, nil
}

func (s *AddressStore) Update(_ context.Context, address *models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[address.ID]
	if !ok || existing.UserID != address.UserID {
		return store.ErrNotFound
	}
	updated := *address
	updated.CreatedAt = existing.CreatedAt
	s.byID[address.ID] = updated
	return nil
}

func (s *AddressStore) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *AddressStore) ClearDefault(_ context.Context, userID, keep primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.byID {
		if a.UserID == userID && a.IsDefault && id != keep {
			a.IsDefault = false
			a.UpdatedAt = time.Now()
			s.byID[id] = a
		}
	}
	return nil
}

func (s *AddressStore) MarkDefault(_ context.Context, userID, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	a.IsDefault = true
	a.UpdatedAt = time.Now()
	s.byID[id] = a
	return nil
}
