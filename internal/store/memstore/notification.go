package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
	"grocery-backend/internal/store"
)

type NotificationStore struct {
	base
	byID map[primitive.ObjectID]models.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{byID: map[primitive.ObjectID]models.Notification{}}
}

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.byID[n.ID] = *n
	return nil
}

func (s *NotificationStore) ListByRecipient(_ context.Context, recipient string, unreadOnly bool) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, 0)
	for _, n := range s.byID {
		if n.Recipient != recipient || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	newestFirst(out, func(n models.Notification) time.Time { return n.CreatedAt })
	return out, nil
}

func (s *NotificationStore) CountUnread(_ context.Context, recipient string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, n := range s.byID {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, recipient string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.Recipient != recipient {
		return store.ErrNotFound
	}
	n.IsRead = true
	s.byID[id] = n
	return nil
}

func (s *NotificationStore) DeleteRead(_ context.Context, recipient string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, n := range s.byID {
		if n.Recipient == recipient && n.IsRead {
			delete(s.byID, id)
			deleted++
		}
	}
	return deleted, nil
}
