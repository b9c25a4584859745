package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type UserStore struct {
	base
	byID map[primitive.ObjectID]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{byID: map[primitive.ObjectID]models.User{}}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.byID[user.ID] = *user
	return nil
}

func (s *UserStore) Get(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

type RefreshTokenStore struct {
	base
	byID map[primitive.ObjectID]models.RefreshToken
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{byID: map[primitive.ObjectID]models.RefreshToken{}}
}

func (s *RefreshTokenStore) Create(_ context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	s.byID[token.ID] = *token
	return nil
}

func (s *RefreshTokenStore) FindActive(_ context.Context, hash string) (models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.byID {
		if t.TokenHash == hash && !t.Revoked {
			return t, nil
		}
	}
	return models.RefreshToken{}, store.ErrNotFound
}

func (s *RefreshTokenStore) Revoke(_ context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return nil
	}
	now := time.Now()
	t.Revoked = true
	t.RevokedAt = &now
	t.ReplacedBy = replacedBy
	s.byID[id] = t
	return nil
}

func (s *RefreshTokenStore) RevokeByHash(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.byID {
		if t.TokenHash == hash && !t.Revoked {
			now := time.Now()
			t.Revoked = true
			t.RevokedAt = &now
			s.byID[id] = t
			return true, nil
		}
	}
	return false, nil
}
