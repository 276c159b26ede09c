package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMarkSucceededIsIdempotent(t *testing.T) {
	payment := &Payment{Status: PaymentStatusPending}
	now := time.Now()

	require.True(t, payment.MarkSucceeded("txn_1", now))
	assert.Equal(t, PaymentStatusSucceeded, payment.Status)
	assert.Equal(t, "txn_1", payment.TransactionID)
	require.NotNil(t, payment.PaidAt)

	// A replayed settlement event must not overwrite anything.
	assert.False(t, payment.MarkSucceeded("txn_2", now.Add(time.Minute)))
	assert.Equal(t, "txn_1", payment.TransactionID)

	assert.False(t, payment.MarkFailed("late failure", now))
	assert.Equal(t, PaymentStatusSucceeded, payment.Status)
}

func TestPaymentMarkFailed(t *testing.T) {
	payment := &Payment{Status: PaymentStatusProcessing}

	require.True(t, payment.MarkFailed("card declined", time.Now()))
	assert.Equal(t, PaymentStatusFailed, payment.Status)
	assert.Equal(t, "card declined", payment.FailureReason)

	assert.False(t, payment.MarkSucceeded("txn_1", time.Now()))
}

func TestPaymentMarkRefundedRequiresSuccess(t *testing.T) {
	payment := &Payment{Status: PaymentStatusPending}
	assert.False(t, payment.MarkRefunded("re_1", 10, "why", time.Now()))

	payment.Status = PaymentStatusSucceeded
	require.True(t, payment.MarkRefunded("re_1", 10, "damaged", time.Now()))
	assert.Equal(t, PaymentStatusRefunded, payment.Status)
	require.NotNil(t, payment.RefundInfo)
	assert.Equal(t, 10.0, payment.RefundInfo.RefundAmount)

	assert.False(t, payment.MarkRefunded("re_2", 10, "again", time.Now()))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodCard))
	assert.True(t, ValidPaymentMethod(PaymentMethodCashOnDelivery))
	assert.False(t, ValidPaymentMethod("barter"))
}
