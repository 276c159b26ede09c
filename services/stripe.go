package services

import (
	"context"
	"encoding/json"
	"math"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/refund"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider implements PaymentProvider against Stripe.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the Stripe client. The secret key is
// process-wide in the Stripe SDK.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

// toCents converts a dollar amount to Stripe's integer minor units.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(toCents(amount)),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &ProviderIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (p *StripeProvider) RetrieveIntent(ctx context.Context, intentID string) (*ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, err
	}
	return &ProviderIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (p *StripeProvider) CreateRefund(ctx context.Context, intentID string, amount float64) (*ProviderRefund, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(toCents(amount)),
	}

	r, err := refund.New(params)
	if err != nil {
		return nil, err
	}
	return &ProviderRefund{ID: r.ID}, nil
}

// ParseWebhook verifies the event signature and reduces the event to the
// intent identifier and outcome the workflow cares about.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, err
	}

	out := &WebhookEvent{Type: string(event.Type)}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, err
	}
	out.IntentID = intent.ID
	if intent.LastPaymentError != nil {
		out.FailureMessage = intent.LastPaymentError.Msg
	}
	return out, nil
}
