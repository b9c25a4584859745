package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationNewOrder      NotificationType = "new_order"
	NotificationStatusUpdate  NotificationType = "status_update"
	NotificationPaymentUpdate NotificationType = "payment_update"

	// AdminRecipient is the inbox shared by sellers and admins.
	AdminRecipient = "admin"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient string             `bson:"recipient" json:"recipient"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	Message   string             `bson:"message" json:"message"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	Type      NotificationType   `bson:"type" json:"type"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
