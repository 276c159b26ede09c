package services

import "context"

// Job types consumed by the background workers. Workflow code only ever
// enqueues; delivery and retry live entirely in the jobs package, so no
// business path waits on or fails because of a notification.
const (
	JobOrderConfirmation = "email:order-confirmation"
	JobOrderShipped      = "email:order-shipped"
	JobWelcomeEmail      = "email:welcome"
	JobLowStockCheck     = "inventory:low-stock-check"
)

// OrderJobPayload identifies the order and user a notification concerns.
// IDs travel as hex strings so the payload round-trips through JSON.
type OrderJobPayload struct {
	UserID      string `json:"userId"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// UserJobPayload identifies a user for account-level notifications.
type UserJobPayload struct {
	UserID string `json:"userId"`
}

// JobEnqueuer pushes a typed job onto the background queue.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload interface{}) error
}
