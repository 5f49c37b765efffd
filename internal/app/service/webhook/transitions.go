package webhook

import (
	"time"

	"gorm.io/datatypes"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/tool"
	"github.com/novaai/backend/pkg/types"
)

// NextBillingDate advances one billing-cycle unit from the given time.
// The test cycle advances like monthly.
func NextBillingDate(from time.Time, cycle types.BillingCycle) time.Time {
	if cycle == types.BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// PaymentFromEvent builds the payment record a DONE notification maps
// to. Re-applying the same event yields identical column values, which
// keeps the upsert idempotent under provider redelivery.
func PaymentFromEvent(userID string, data *EventData) *models.Payment {
	payment := &models.Payment{
		ID:         tool.GenerateUUIDV7(),
		UserID:     userID,
		PaymentKey: data.PaymentKey,
		OrderID:    data.OrderID,
		OrderName:  data.OrderName,
		Amount:     data.TotalAmount,
		Method:     data.Method,
		Status:     data.Status,
		Card:       datatypes.JSON(data.Card),
	}
	if at, err := time.Parse(time.RFC3339, data.ApprovedAt); err == nil {
		payment.ApprovedAt = &at
	}
	return payment
}

// ApplyPaymentDone updates a recurring subscription after a successful
// charge: the next due date moves one cycle unit out from the handling
// time, the subscription goes active, and the failure streak clears.
// Non-recurring subscriptions are left untouched. Reports whether the
// subscription changed.
func ApplyPaymentDone(sub *models.Subscription, orderID string, now time.Time) bool {
	if sub == nil || !sub.IsRecurring {
		return false
	}
	next := NextBillingDate(now, sub.BillingCycle)
	sub.NextBillingDate = &next
	sub.Status = types.SubscriptionStatusActive
	paidAt := now
	sub.LastPaymentDate = &paidAt
	sub.LastOrderID = orderID
	sub.FailureCount = 0
	sub.LastFailureReason = ""
	return true
}

// ApplyPaymentCanceled marks the subscription cancelled when the
// canceled order is the one that paid for the current period. Reports
// whether the subscription changed.
func ApplyPaymentCanceled(sub *models.Subscription, orderID string, now time.Time) bool {
	if sub == nil || orderID == "" || sub.LastOrderID != orderID {
		return false
	}
	sub.Status = types.SubscriptionStatusCancelled
	cancelledAt := now
	sub.CancelledAt = &cancelledAt
	return true
}

// ApplyBillingDeleted clears the stored payment instrument when the
// deleted billing key is the one on file. A mismatched key leaves the
// subscription unchanged. Reports whether the subscription changed.
func ApplyBillingDeleted(sub *models.Subscription, billingKey string, now time.Time) bool {
	if sub == nil || billingKey == "" || sub.BillingKey != billingKey {
		return false
	}
	sub.BillingKey = ""
	sub.IsRecurring = false
	sub.Status = types.SubscriptionStatusCancelled
	cancelledAt := now
	sub.CancelledAt = &cancelledAt
	return true
}
