package webhook

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/types"
)

func TestNextBillingDate(t *testing.T) {
	from := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC), NextBillingDate(from, types.BillingCycleMonthly))
	assert.Equal(t, time.Date(2027, 8, 30, 12, 0, 0, 0, time.UTC), NextBillingDate(from, types.BillingCycleYearly))
	assert.Equal(t, time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC), NextBillingDate(from, types.BillingCycleTest))
}

func TestPaymentFromEvent(t *testing.T) {
	data := &EventData{
		PaymentKey:  "pay_abc",
		OrderID:     "order_1",
		OrderName:   "Nova Plus Monthly",
		Status:      types.PaymentStatusDone,
		TotalAmount: 29900,
		Method:      "card",
		ApprovedAt:  "2026-08-30T10:00:00+09:00",
		Card:        json.RawMessage(`{"number":"1234****"}`),
	}
	payment := PaymentFromEvent("user_1", data)
	assert.Equal(t, "user_1", payment.UserID)
	assert.Equal(t, "pay_abc", payment.PaymentKey)
	assert.EqualValues(t, 29900, payment.Amount)
	assert.Equal(t, types.PaymentStatusDone, payment.Status)
	require.NotNil(t, payment.ApprovedAt)

	// identical event payloads produce identical column values
	again := PaymentFromEvent("user_1", data)
	again.ID = payment.ID
	assert.Equal(t, payment, again)
}

func TestPaymentFromEventBadApprovedAt(t *testing.T) {
	payment := PaymentFromEvent("user_1", &EventData{PaymentKey: "pay_x", ApprovedAt: "not-a-time"})
	assert.Nil(t, payment.ApprovedAt)
}

func TestApplyPaymentDone(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("recurring monthly", func(t *testing.T) {
		sub := &models.Subscription{
			IsRecurring:       true,
			BillingCycle:      types.BillingCycleMonthly,
			Status:            types.SubscriptionStatusCancelled,
			FailureCount:      3,
			LastFailureReason: "card declined",
		}
		changed := ApplyPaymentDone(sub, "order_9", now)
		require.True(t, changed)
		assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
		require.NotNil(t, sub.NextBillingDate)
		assert.Equal(t, now.AddDate(0, 1, 0), *sub.NextBillingDate)
		require.NotNil(t, sub.LastPaymentDate)
		assert.Equal(t, now, *sub.LastPaymentDate)
		assert.Equal(t, "order_9", sub.LastOrderID)
		assert.Zero(t, sub.FailureCount)
		assert.Empty(t, sub.LastFailureReason)
	})

	t.Run("non-recurring untouched", func(t *testing.T) {
		sub := &models.Subscription{IsRecurring: false, Status: types.SubscriptionStatusNone}
		assert.False(t, ApplyPaymentDone(sub, "order_9", now))
		assert.Equal(t, types.SubscriptionStatusNone, sub.Status)
		assert.Nil(t, sub.NextBillingDate)
	})

	t.Run("replay is idempotent", func(t *testing.T) {
		sub := &models.Subscription{IsRecurring: true, BillingCycle: types.BillingCycleYearly}
		ApplyPaymentDone(sub, "order_9", now)
		first := *sub
		ApplyPaymentDone(sub, "order_9", now)
		assert.Equal(t, first, *sub)
	})
}

func TestApplyPaymentCanceled(t *testing.T) {
	now := time.Now()

	t.Run("matching last order cancels subscription", func(t *testing.T) {
		sub := &models.Subscription{Status: types.SubscriptionStatusActive, LastOrderID: "order_1"}
		require.True(t, ApplyPaymentCanceled(sub, "order_1", now))
		assert.Equal(t, types.SubscriptionStatusCancelled, sub.Status)
		require.NotNil(t, sub.CancelledAt)
	})

	t.Run("other order leaves subscription alone", func(t *testing.T) {
		sub := &models.Subscription{Status: types.SubscriptionStatusActive, LastOrderID: "order_1"}
		assert.False(t, ApplyPaymentCanceled(sub, "order_2", now))
		assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
	})
}

func TestApplyBillingDeleted(t *testing.T) {
	now := time.Now()

	t.Run("matching key clears instrument", func(t *testing.T) {
		sub := &models.Subscription{
			Status:      types.SubscriptionStatusActive,
			IsRecurring: true,
			BillingKey:  "bill_1",
		}
		require.True(t, ApplyBillingDeleted(sub, "bill_1", now))
		assert.Empty(t, sub.BillingKey)
		assert.False(t, sub.IsRecurring)
		assert.Equal(t, types.SubscriptionStatusCancelled, sub.Status)
		require.NotNil(t, sub.CancelledAt)
	})

	t.Run("mismatched key is a no-op", func(t *testing.T) {
		sub := &models.Subscription{
			Status:      types.SubscriptionStatusActive,
			IsRecurring: true,
			BillingKey:  "bill_1",
		}
		assert.False(t, ApplyBillingDeleted(sub, "bill_other", now))
		assert.Equal(t, "bill_1", sub.BillingKey)
		assert.True(t, sub.IsRecurring)
		assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
	})
}

func TestParseEvent(t *testing.T) {
	raw := []byte(`{
		"eventType": "PAYMENT_STATUS_CHANGED",
		"data": {
			"paymentKey": "pay_abc",
			"orderId": "order_1",
			"status": "DONE",
			"customerKey": "cus_v1_user_1",
			"totalAmount": 99000
		}
	}`)
	event, err := ParseEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, types.WebhookEventPaymentStatusChanged, event.EventType)
	assert.Equal(t, "pay_abc", event.Data.PaymentKey)
	assert.EqualValues(t, 99000, event.Data.TotalAmount)

	_, err = ParseEvent([]byte("not json"))
	assert.Error(t, err)
}
