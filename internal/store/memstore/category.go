package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type CategoryStore struct {
	base
	byID map[primitive.ObjectID]models.Category
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{byID: map[primitive.ObjectID]models.Category{}}
}

func (s *CategoryStore) List(_ context.Context, isActive *bool) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0)
	for _, c := range s.byID {
		if isActive == nil || c.IsActive == *isActive {
			out = append(out, c)
		}
	}
	newestFirst(out, func(c models.Category) time.Time { return c.CreatedAt })
	return out, nil
}

func (s *CategoryStore) Get(_ context.Context, id primitive.ObjectID) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return models.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (s *CategoryStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CategoryStore) ExistsByName(_ context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, c := range s.byID {
		if c.Name == name && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (s *CategoryStore) Create(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	s.byID[category.ID] = *category
	return nil
}

func (s *CategoryStore) Update(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[category.ID]
	if !ok {
		return store.ErrNotFound
	}
	updated := *category
	updated.CreatedAt = existing.CreatedAt
	s.byID[category.ID] = updated
	return nil
}

func (s *CategoryStore) Deactivate(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	c.IsActive = false
	s.byID[id] = c
	return nil
}
