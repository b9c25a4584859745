package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/models"
	"grocery-backend/internal/notify"
	"grocery-backend/internal/store"
)

// Publisher pushes a stored notification to live subscribers.
type Publisher interface {
	Publish(recipient string, msg notify.Message)
}

type NotificationService struct {
	notifications store.NotificationStore
	publisher     Publisher
	log           *zap.Logger
}

func NewNotificationService(notifications store.NotificationStore, publisher Publisher, log *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, publisher: publisher, log: log}
}

func (s *NotificationService) Create(ctx context.Context, recipient string, orderID primitive.ObjectID, message string, kind models.NotificationType) (models.Notification, error) {
	fe := fieldErrors{}
	fe.require("recipient", recipient)
	fe.require("message", message)
	if err := fe.err("invalid notification"); err != nil {
		return models.Notification{}, err
	}

	n := models.Notification{
		Recipient: strings.TrimSpace(recipient),
		OrderID:   orderID,
		Message:   strings.TrimSpace(message),
		Type:      kind,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Create(ctx, &n); err != nil {
		return models.Notification{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(n.Recipient, notify.Message{Event: "notification", Data: n})
	}
	return n, nil
}

// Dispatch is Create for lifecycle side effects: a failure is logged and
// never reaches the caller.
func (s *NotificationService) Dispatch(ctx context.Context, recipient string, orderID primitive.ObjectID, message string, kind models.NotificationType) {
	if _, err := s.Create(ctx, recipient, orderID, message, kind); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("recipient", recipient),
			zap.String("orderId", orderID.Hex()),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) ListFor(ctx context.Context, recipient string, unreadOnly bool) ([]models.Notification, error) {
	return s.notifications.ListByRecipient(ctx, recipient, unreadOnly)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipient string) (int64, error) {
	return s.notifications.CountUnread(ctx, recipient)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipient string, id primitive.ObjectID) error {
	return storeErr("notification", s.notifications.MarkRead(ctx, recipient, id))
}

// ClearRead deletes every read notification of recipient.
func (s *NotificationService) ClearRead(ctx context.Context, recipient string) (int64, error) {
	deleted, err := s.notifications.DeleteRead(ctx, recipient)
	if err != nil {
		return 0, err
	}
	s.log.Info("read notifications cleared", zap.String("recipient", recipient), zap.Int64("deleted", deleted))
	return deleted, nil
}
