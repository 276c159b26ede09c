package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodPaypal         PaymentMethod = "paypal"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPaypal,
		PaymentMethodBankTransfer, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type RefundInfo struct {
	RefundID     string    `bson:"refundId" json:"refundId"`
	RefundAmount float64   `bson:"refundAmount" json:"refundAmount"`
	RefundReason string    `bson:"refundReason,omitempty" json:"refundReason,omitempty"`
	RefundedAt   time.Time `bson:"refundedAt" json:"refundedAt"`
}

type Payment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID         primitive.ObjectID `bson:"orderId" json:"orderId"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Amount          float64            `bson:"amount" json:"amount"`
	Currency        string             `bson:"currency" json:"currency"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Status          PaymentStatus      `bson:"status" json:"status"`
	TransactionID   string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	FailureReason   string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	RefundInfo      *RefundInfo        `bson:"refundInfo,omitempty" json:"refundInfo,omitempty"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Settleable reports whether the payment may still move to a terminal
// outcome. Both the synchronous confirm path and the webhook path funnel
// through this guard, which makes re-delivery of the same provider event
// a no-op.
func (p *Payment) Settleable() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusProcessing
}

// MarkSucceeded records a settled charge. Returns false when the payment
// is already terminal.
func (p *Payment) MarkSucceeded(transactionID string, at time.Time) bool {
	if !p.Settleable() {
		return false
	}
	p.Status = PaymentStatusSucceeded
	p.TransactionID = transactionID
	p.PaidAt = &at
	p.UpdatedAt = at
	return true
}

// MarkFailed records a failed charge attempt. Returns false when the
// payment is already terminal.
func (p *Payment) MarkFailed(reason string, at time.Time) bool {
	if !p.Settleable() {
		return false
	}
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = at
	return true
}

// MarkRefunded records a completed refund. Only a succeeded payment may
// be refunded.
func (p *Payment) MarkRefunded(refundID string, amount float64, reason string, at time.Time) bool {
	if p.Status != PaymentStatusSucceeded {
		return false
	}
	p.Status = PaymentStatusRefunded
	p.RefundInfo = &RefundInfo{
		RefundID:     refundID,
		RefundAmount: amount,
		RefundReason: reason,
		RefundedAt:   at,
	}
	p.UpdatedAt = at
	return true
}
