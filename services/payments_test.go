package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository/memory"
	"github.com/northmart/backend-go/utils"
)

// fakeProvider is an in-process stand-in for the payment processor.
type fakeProvider struct {
	intents map[string]*ProviderIntent
	refunds []float64
	fail    error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: make(map[string]*ProviderIntent)}
}

func (p *fakeProvider) CreateIntent(_ context.Context, amount float64, _ string, _ map[string]string) (*ProviderIntent, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	intent := &ProviderIntent{
		ID:           primitive.NewObjectID().Hex(),
		ClientSecret: "secret_" + primitive.NewObjectID().Hex(),
		Status:       "requires_payment_method",
	}
	p.intents[intent.ID] = intent
	return intent, nil
}

func (p *fakeProvider) RetrieveIntent(_ context.Context, intentID string) (*ProviderIntent, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	intent, ok := p.intents[intentID]
	if !ok {
		return nil, errors.New("no such intent")
	}
	return intent, nil
}

func (p *fakeProvider) CreateRefund(_ context.Context, _ string, amount float64) (*ProviderRefund, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	p.refunds = append(p.refunds, amount)
	return &ProviderRefund{ID: "re_" + primitive.NewObjectID().Hex()}, nil
}

func (p *fakeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if signature != "valid" {
		return nil, errors.New("bad signature")
	}
	intentID := string(payload)
	if intent, ok := p.intents[intentID]; ok && intent.Status == IntentStatusSucceeded {
		return &WebhookEvent{Type: EventIntentSucceeded, IntentID: intentID}, nil
	}
	return &WebhookEvent{Type: EventIntentFailed, IntentID: intentID, FailureMessage: "card declined"}, nil
}

func newPaymentFixture(t *testing.T) (*PaymentService, *OrderService, *memory.Store, *fakeProvider) {
	t.Helper()
	store := memory.NewStore()
	provider := newFakeProvider()
	orders := NewOrderService(store.Orders(), store.Carts(), store.Products(), &captureQueue{})
	payments := NewPaymentService(store.Payments(), store.Orders(), provider)
	return payments, orders, store, provider
}

func placeOrder(t *testing.T, orders *OrderService, store *memory.Store, userID primitive.ObjectID) *models.Order {
	t.Helper()
	product := seedProduct(t, store, "Widget", 60, 10)
	seedCart(t, store, userID, cartLine(product, 2))
	order, err := orders.CreateOrder(context.Background(), userID, testAddress(), models.PaymentMethodCard)
	require.NoError(t, err)
	return order
}

func TestCreatePaymentIntent(t *testing.T) {
	payments, orders, store, _ := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	result, err := payments.CreatePaymentIntent(ctx, order.ID, userID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ClientSecret)

	payment, err := store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, payment.OrderID)
	assert.Equal(t, order.Total, payment.Amount)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.NotEmpty(t, payment.PaymentIntentID)
}

func TestCreatePaymentIntentGuards(t *testing.T) {
	payments, orders, store, provider := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	_, err := payments.CreatePaymentIntent(ctx, primitive.NewObjectID(), userID)
	assert.Equal(t, 404, utils.StatusCode(err))

	_, err = payments.CreatePaymentIntent(ctx, order.ID, primitive.NewObjectID())
	assert.Equal(t, 403, utils.StatusCode(err))

	provider.fail = errors.New("provider down")
	_, err = payments.CreatePaymentIntent(ctx, order.ID, userID)
	assert.Equal(t, 502, utils.StatusCode(err))
}

func TestConfirmPaymentSuccess(t *testing.T) {
	payments, orders, store, provider := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	result, err := payments.CreatePaymentIntent(ctx, order.ID, userID)
	require.NoError(t, err)
	payment, err := store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	provider.intents[payment.PaymentIntentID].Status = IntentStatusSucceeded

	confirmed, err := payments.ConfirmPayment(ctx, result.PaymentID, payment.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, confirmed.Status)

	// The order picks up the settlement.
	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)
	assert.Equal(t, result.PaymentID, got.PaymentID)
}

func TestConfirmPaymentFailureLeavesOrderPending(t *testing.T) {
	payments, orders, store, _ := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	result, err := payments.CreatePaymentIntent(ctx, order.ID, userID)
	require.NoError(t, err)
	payment, err := store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)

	_, err = payments.ConfirmPayment(ctx, result.PaymentID, payment.PaymentIntentID)
	require.Error(t, err)
	assert.Equal(t, 400, utils.StatusCode(err))

	payment, err = store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestWebhookSettlesPayment(t *testing.T) {
	payments, orders, store, provider := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	result, err := payments.CreatePaymentIntent(ctx, order.ID, userID)
	require.NoError(t, err)
	payment, err := store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	provider.intents[payment.PaymentIntentID].Status = IntentStatusSucceeded

	require.NoError(t, payments.HandleWebhook(ctx, []byte(payment.PaymentIntentID), "valid"))

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)

	// Replaying the event, or confirming after it, changes nothing.
	require.NoError(t, payments.HandleWebhook(ctx, []byte(payment.PaymentIntentID), "valid"))
	_, err = payments.ConfirmPayment(ctx, result.PaymentID, payment.PaymentIntentID)
	require.NoError(t, err)

	got, err = store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	count := 0
	for _, entry := range got.StatusHistory {
		if entry.Status == models.OrderStatusProcessing {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestWebhookFailureRecordsReason(t *testing.T) {
	payments, orders, store, _ := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	result, err := payments.CreatePaymentIntent(ctx, order.ID, userID)
	require.NoError(t, err)
	payment, err := store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)

	require.NoError(t, payments.HandleWebhook(ctx, []byte(payment.PaymentIntentID), "valid"))

	payment, err = store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "card declined", payment.FailureReason)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	payments, _, _, _ := newPaymentFixture(t)

	err := payments.HandleWebhook(context.Background(), []byte("whatever"), "forged")
	assert.Equal(t, 400, utils.StatusCode(err))
}

func TestWebhookUnknownIntentIsIgnored(t *testing.T) {
	payments, _, _, provider := newPaymentFixture(t)
	provider.intents["pi_unknown"] = &ProviderIntent{ID: "pi_unknown", Status: IntentStatusSucceeded}

	assert.NoError(t, payments.HandleWebhook(context.Background(), []byte("pi_unknown"), "valid"))
}

func TestProcessRefund(t *testing.T) {
	payments, orders, store, provider := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	result, err := payments.CreatePaymentIntent(ctx, order.ID, userID)
	require.NoError(t, err)
	payment, err := store.Payments().GetByID(ctx, result.PaymentID)
	require.NoError(t, err)

	// Refund before settlement is a conflict.
	_, err = payments.ProcessRefund(ctx, result.PaymentID, 10, "damaged")
	assert.Equal(t, 409, utils.StatusCode(err))

	provider.intents[payment.PaymentIntentID].Status = IntentStatusSucceeded
	_, err = payments.ConfirmPayment(ctx, result.PaymentID, payment.PaymentIntentID)
	require.NoError(t, err)

	_, err = payments.ProcessRefund(ctx, result.PaymentID, payment.Amount+1, "too much")
	assert.Equal(t, 400, utils.StatusCode(err))

	refunded, err := payments.ProcessRefund(ctx, result.PaymentID, payment.Amount, "damaged")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundInfo)
	assert.Equal(t, payment.Amount, refunded.RefundInfo.RefundAmount)
	assert.Equal(t, "damaged", refunded.RefundInfo.RefundReason)
	require.Len(t, provider.refunds, 1)

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, got.Status)
}

func TestGetPaymentByOrder(t *testing.T) {
	payments, orders, store, _ := newPaymentFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	order := placeOrder(t, orders, store, userID)

	_, err := payments.GetPaymentByOrder(ctx, order.ID)
	assert.Equal(t, 404, utils.StatusCode(err))

	result, err := payments.CreatePaymentIntent(ctx, order.ID, userID)
	require.NoError(t, err)

	payment, err := payments.GetPaymentByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, result.PaymentID, payment.ID)
}
