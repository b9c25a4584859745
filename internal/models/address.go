package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a shipping address owned by exactly one user.
type Address struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Description string             `bson:"description" json:"description"`
	City        string             `bson:"city" json:"city"`
	Street      string             `bson:"street" json:"street"`
	District    string             `bson:"district" json:"district"`
	PostalCode  string             `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsDefault   bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AddressSnapshot is the copy of an address frozen into an order.
type AddressSnapshot struct {
	Description string `bson:"description" json:"description"`
	City        string `bson:"city" json:"city"`
	Street      string `bson:"street" json:"street"`
	District    string `bson:"district" json:"district"`
	PostalCode  string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`
}

func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Description: a.Description,
		City:        a.City,
		Street:      a.Street,
		District:    a.District,
		PostalCode:  a.PostalCode,
		Phone:       a.Phone,
		Notes:       a.Notes,
	}
}
