package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
)

type CartStore struct {
	base
	byUser map[primitive.ObjectID]models.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{byUser: map[primitive.ObjectID]models.Cart{}}
}

func (s *CartStore) Get(_ context.Context, userID primitive.ObjectID) (models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.byUser[userID]
	if !ok {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	cart.Items = append([]models.CartItem{}, cart.Items...)
	return cart, nil
}

func (s *CartStore) Save(_ context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = time.Now()
	}
	stored := *cart
	if existing, ok := s.byUser[cart.UserID]; ok {
		stored.ID = existing.ID
	} else if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	stored.Items = append([]models.CartItem{}, cart.Items...)
	s.byUser[cart.UserID] = stored
	cart.ID = stored.ID
	return nil
}

func (s *CartStore) Clear(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.byUser[userID]; ok {
		cart.Items = []models.CartItem{}
		cart.UpdatedAt = time.Now()
		s.byUser[userID] = cart
	}
	return nil
}
