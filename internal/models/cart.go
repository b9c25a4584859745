package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart is the per-user product → quantity mapping. Prices are never stored
// here; they are read from the live product whenever the cart is viewed.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IndexOf returns the position of productID in the cart, or -1.
func (c *Cart) IndexOf(productID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

type CartLine struct {
	ProductID primitive.ObjectID `json:"productId"`
	Name      string             `json:"name"`
	ImagePath string             `json:"imagePath,omitempty"`
	UnitPrice float64            `json:"unitPrice"`
	Quantity  int                `json:"quantity"`
	Subtotal  float64            `json:"subtotal"`
	InStock   bool               `json:"inStock"`
}

// CartView is the priced read model returned to the storefront.
type CartView struct {
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
	Total         float64    `json:"total"`
}
