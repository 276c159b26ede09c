package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/utils"
)

// Provider event and status values, mirroring the processor's wire names.
const (
	IntentStatusSucceeded = "succeeded"

	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

type ProviderIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

type ProviderRefund struct {
	ID string
}

// WebhookEvent is a provider-pushed intent state change, already
// signature-verified and reduced to what the workflow needs.
type WebhookEvent struct {
	Type           string
	IntentID       string
	FailureMessage string
}

// PaymentProvider is the external payment processor contract. The
// workflow only ever sees opaque intent and refund identifiers.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*ProviderIntent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*ProviderIntent, error)
	CreateRefund(ctx context.Context, intentID string, amount float64) (*ProviderRefund, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// PaymentService adapts the external processor onto Payment rows and
// reflects settlement outcomes onto order status.
type PaymentService struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	provider PaymentProvider
}

func NewPaymentService(payments repository.PaymentRepository, orders repository.OrderRepository, provider PaymentProvider) *PaymentService {
	return &PaymentService{payments: payments, orders: orders, provider: provider}
}

// PaymentIntentResult is what the client needs to complete the charge.
type PaymentIntentResult struct {
	PaymentID    primitive.ObjectID `json:"paymentId"`
	ClientSecret string             `json:"clientSecret"`
}

// CreatePaymentIntent opens a pending Payment row for the order and
// requests an intent from the processor.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, orderID, userID primitive.ObjectID) (*PaymentIntentResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, utils.Forbidden("Not authorized to pay for this order")
	}

	now := time.Now()
	payment := &models.Payment{
		ID:            primitive.NewObjectID(),
		OrderID:       orderID,
		UserID:        userID,
		Amount:        order.Total,
		Currency:      "USD",
		PaymentMethod: order.PaymentMethod,
		Status:        models.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, order.Total, payment.Currency, map[string]string{
		"orderId":   orderID.Hex(),
		"paymentId": payment.ID.Hex(),
	})
	if err != nil {
		return nil, utils.Upstream(fmt.Sprintf("Payment provider error: %v", err))
	}

	payment.PaymentIntentID = intent.ID
	payment.UpdatedAt = time.Now()
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	return &PaymentIntentResult{PaymentID: payment.ID, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment polls the processor for the intent's settled state and
// applies the outcome. The order is left untouched on failure.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID primitive.ObjectID, intentID string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Payment not found")
	}
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, utils.Upstream(fmt.Sprintf("Payment provider error: %v", err))
	}

	if intent.Status != IntentStatusSucceeded {
		if err := s.settle(ctx, payment, false, "", "Payment not completed"); err != nil {
			return nil, err
		}
		return nil, utils.BadRequest("Payment failed")
	}

	if err := s.settle(ctx, payment, true, intent.ID, ""); err != nil {
		return nil, err
	}
	return payment, nil
}

// HandleWebhook reconciles provider-pushed intent events. It funnels into
// the same settle transition as ConfirmPayment, so replaying an event or
// racing the synchronous path is harmless.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return utils.BadRequest("Invalid webhook payload")
	}

	switch event.Type {
	case EventIntentSucceeded, EventIntentFailed:
	default:
		log.Printf("unhandled webhook event type: %s", event.Type)
		return nil
	}

	payment, err := s.payments.GetByIntentID(ctx, event.IntentID)
	if err == repository.ErrNotFound {
		log.Printf("webhook for unknown payment intent %s", event.IntentID)
		return nil
	}
	if err != nil {
		return err
	}

	if event.Type == EventIntentSucceeded {
		return s.settle(ctx, payment, true, event.IntentID, "")
	}
	reason := event.FailureMessage
	if reason == "" {
		reason = "Payment failed"
	}
	return s.settle(ctx, payment, false, "", reason)
}

// settle is the single settlement transition both reconciliation paths go
// through. The pending/processing guard in the model makes it idempotent:
// a payment already settled is left exactly as it is.
func (s *PaymentService) settle(ctx context.Context, payment *models.Payment, succeeded bool, transactionID, failureReason string) error {
	now := time.Now()

	if succeeded {
		if !payment.MarkSucceeded(transactionID, now) {
			return nil
		}
		if err := s.payments.Update(ctx, payment); err != nil {
			return err
		}
		paymentsTotal.WithLabelValues("succeeded").Inc()

		order, err := s.orders.GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		order.PaymentID = payment.ID
		order.SetStatus(models.OrderStatusProcessing, "Payment received", now)
		return s.orders.Update(ctx, order)
	}

	if !payment.MarkFailed(failureReason, now) {
		return nil
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return err
	}
	paymentsTotal.WithLabelValues("failed").Inc()
	return nil
}

// ProcessRefund refunds a succeeded payment through the processor and
// flips the order to refunded.
func (s *PaymentService) ProcessRefund(ctx context.Context, paymentID primitive.ObjectID, amount float64, reason string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Payment not found")
	}
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusSucceeded {
		return nil, utils.Conflict("Cannot refund unsuccessful payment")
	}
	if amount <= 0 || amount > payment.Amount {
		return nil, utils.BadRequest("Invalid refund amount")
	}

	refund, err := s.provider.CreateRefund(ctx, payment.PaymentIntentID, amount)
	if err != nil {
		return nil, utils.Upstream(fmt.Sprintf("Payment provider error: %v", err))
	}

	now := time.Now()
	payment.MarkRefunded(refund.ID, amount, reason, now)
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	refundsTotal.Inc()

	order, err := s.orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	order.SetStatus(models.OrderStatusRefunded, reason, now)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetPaymentByOrder looks up the payment linked to an order.
func (s *PaymentService) GetPaymentByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	payment, err := s.payments.GetByOrder(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Payment not found")
	}
	return payment, err
}
