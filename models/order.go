package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

const (
	taxRate           = 0.10
	freeShippingAbove = 100.0
	flatShippingCost  = 10.0
)

// OrderItem is a snapshot of a cart line at order time. Later product
// edits never alter historical orders.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

type ShippingAddress struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Country string `bson:"country" json:"country"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type StatusEntry struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
	UpdatedAt time.Time   `bson:"updatedAt" json:"updatedAt"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentID       primitive.ObjectID `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	Tax             float64            `bson:"tax" json:"tax"`
	ShippingCost    float64            `bson:"shippingCost" json:"shippingCost"`
	Discount        float64            `bson:"discount" json:"discount"`
	Total           float64            `bson:"total" json:"total"`
	Status          OrderStatus        `bson:"status" json:"status"`
	StatusHistory   []StatusEntry      `bson:"statusHistory" json:"statusHistory"`
	TrackingNumber  string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	CancelledAt     *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelReason    string             `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderTotals is the price breakdown computed once at order creation and
// never recomputed afterwards.
type OrderTotals struct {
	Subtotal     float64
	Tax          float64
	ShippingCost float64
	Discount     float64
	Total        float64
}

// ComputeOrderTotals prices an order: 10% tax, free shipping above 100,
// flat 10 otherwise.
func ComputeOrderTotals(subtotal float64) OrderTotals {
	t := OrderTotals{Subtotal: subtotal, Tax: subtotal * taxRate}
	if subtotal <= freeShippingAbove {
		t.ShippingCost = flatShippingCost
	}
	t.Total = t.Subtotal + t.Tax + t.ShippingCost - t.Discount
	return t
}

// NewOrderNumber generates a human-readable, collision-proof order number.
// A count-at-creation scheme races under concurrent creation, so the
// suffix comes from a random UUID instead.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

// CanCancel reports whether the order may still be cancelled. Delivered,
// cancelled and refunded are terminal.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return false
	}
	return true
}

// SetStatus transitions the order and appends to the status history.
// History is append-only; every transition leaves a dated entry.
func (o *Order) SetStatus(status OrderStatus, note string, at time.Time) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    status,
		Note:      note,
		UpdatedAt: at,
	})
	if status == OrderStatusDelivered {
		o.DeliveredAt = &at
	}
	o.UpdatedAt = at
}

// Cancel marks the order cancelled with the given reason.
func (o *Order) Cancel(reason string, at time.Time) {
	o.CancelledAt = &at
	o.CancelReason = reason
	o.SetStatus(OrderStatusCancelled, reason, at)
}
