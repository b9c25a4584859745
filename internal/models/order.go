package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

type PaymentStatus string

type PaymentType string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"

	PaymentTypeCash   PaymentType = "cash"
	PaymentTypeOnline PaymentType = "online"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether from → to is an edge of the order graph.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

func (t PaymentType) Valid() bool {
	return t == PaymentTypeCash || t == PaymentTypeOnline
}

// OrderItem is an immutable snapshot of one product at placement time.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	ImagePath string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Ref             string             `bson:"ref" json:"ref"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Amount          float64            `bson:"amount" json:"amount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentType     PaymentType        `bson:"paymentType" json:"paymentType"`
	PaymentRef      string             `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	PaymentURL      string             `bson:"paymentUrl,omitempty" json:"paymentUrl,omitempty"`
	DeliveryAddress AddressSnapshot    `bson:"deliveryAddress" json:"deliveryAddress"`
	Note            string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderPatch lists the mutable fields of an order; nil fields are left alone.
type OrderPatch struct {
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	PaymentRef    *string
	PaymentURL    *string
}

type OrderFilter struct {
	UserID        *primitive.ObjectID
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Page          int64
	Limit         int64
}

// OrderStatistics feeds the dashboard counters.
type OrderStatistics struct {
	TotalOrders     int64                   `json:"totalOrders"`
	ByStatus        map[OrderStatus]int64   `json:"byStatus"`
	ByPaymentStatus map[PaymentStatus]int64 `json:"byPaymentStatus"`
	Revenue         float64                 `json:"revenue"`
}
