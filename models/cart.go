package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"` // unit price snapshot at add time
}

// Cart holds a user's in-progress selection. One cart per user; totals are
// derived and must be recomputed via Recalculate before every persist.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Items      []CartItem         `bson:"items" json:"items"`
	TotalItems int                `bson:"totalItems" json:"totalItems"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Recalculate recomputes the derived totals from the line items.
func (c *Cart) Recalculate() {
	items, price := 0, 0.0
	for _, it := range c.Items {
		items += it.Quantity
		price += float64(it.Quantity) * it.Price
	}
	c.TotalItems = items
	c.TotalPrice = price
	c.UpdatedAt = time.Now()
}

// ItemFor returns the line item holding the given product, or nil.
func (c *Cart) ItemFor(productID primitive.ObjectID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Item returns the line item with the given item id, or nil.
func (c *Cart) Item(itemID primitive.ObjectID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem drops the line item with the given id and reports whether it
// was present.
func (c *Cart) RemoveItem(itemID primitive.ObjectID) bool {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart. The cart row itself survives.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// NewCart returns an empty cart for the user.
func NewCart(userID primitive.ObjectID) *Cart {
	now := time.Now()
	return &Cart{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
