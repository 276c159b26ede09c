package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOrderTotals(t *testing.T) {
	tests := []struct {
		name         string
		subtotal     float64
		wantTax      float64
		wantShipping float64
		wantTotal    float64
	}{
		{"free shipping above threshold", 110, 11, 0, 121},
		{"flat shipping at threshold", 100, 10, 10, 120},
		{"flat shipping below threshold", 50, 5, 10, 65},
		{"just above threshold", 100.01, 10.001, 0, 110.011},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeOrderTotals(tt.subtotal)
			assert.Equal(t, tt.subtotal, totals.Subtotal)
			assert.InDelta(t, tt.wantTax, totals.Tax, 1e-9)
			assert.Equal(t, tt.wantShipping, totals.ShippingCost)
			assert.InDelta(t, tt.wantTotal, totals.Total, 1e-9)
		})
	}
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Now()
	number := NewOrderNumber(now)

	require.True(t, strings.HasPrefix(number, "ORD-"))
	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 8)

	// Same instant must still yield distinct numbers.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewOrderNumber(now)
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}

func TestOrderCanCancel(t *testing.T) {
	cancellable := []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped}
	for _, s := range cancellable {
		assert.True(t, (&Order{Status: s}).CanCancel(), "status %s", s)
	}

	terminal := []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded}
	for _, s := range terminal {
		assert.False(t, (&Order{Status: s}).CanCancel(), "status %s", s)
	}
}

func TestOrderSetStatusAppendsHistory(t *testing.T) {
	order := &Order{}
	created := time.Now()

	order.SetStatus(OrderStatusPending, "Order placed", created)
	order.SetStatus(OrderStatusProcessing, "Payment received", created.Add(time.Minute))
	order.SetStatus(OrderStatusShipped, "", created.Add(2*time.Minute))

	require.Len(t, order.StatusHistory, 3)
	assert.Equal(t, OrderStatusShipped, order.Status)
	assert.Equal(t, OrderStatusShipped, order.StatusHistory[2].Status)
	assert.False(t, order.StatusHistory[2].UpdatedAt.Before(created))
	assert.Nil(t, order.DeliveredAt)
}

func TestOrderSetStatusDeliveredStampsDeliveredAt(t *testing.T) {
	order := &Order{}
	at := time.Now()

	order.SetStatus(OrderStatusDelivered, "", at)

	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, at, *order.DeliveredAt)
}

func TestOrderCancel(t *testing.T) {
	order := &Order{Status: OrderStatusPending}
	at := time.Now()

	order.Cancel("changed my mind", at)

	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.Equal(t, "changed my mind", order.CancelReason)
	require.NotNil(t, order.CancelledAt)
	assert.Equal(t, at, *order.CancelledAt)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, OrderStatusCancelled, order.StatusHistory[0].Status)
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusShipped))
	assert.False(t, ValidOrderStatus("lost"))
}
