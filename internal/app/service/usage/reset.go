package usage

import (
	"time"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/types"
)

// ResetAnchor picks the timestamp the current billing period starts at:
// the last successful payment, else the instrument registration time,
// else the subscription start. Nil when none of them is set.
func ResetAnchor(sub *models.Subscription) *time.Time {
	if sub == nil {
		return nil
	}
	for _, ts := range []*time.Time{sub.LastPaymentDate, sub.RegisteredAt, sub.StartDate} {
		if ts != nil && !ts.IsZero() {
			return ts
		}
	}
	return nil
}

// NeedsReset reports whether the usage counter must reset because a new
// billing period started, and the anchor to record as the new reset
// time. Free-tier users never reset. The check is idempotent: once the
// anchor has been applied as usageResetAt, repeat calls report false.
func NeedsReset(user *models.User, tier types.PlanTier) (bool, *time.Time) {
	if tier == types.PlanTierFree {
		return false, nil
	}
	anchor := ResetAnchor(user.GetSubscription())
	if anchor == nil {
		return false, nil
	}
	if user.UsageResetAt == nil || user.UsageResetAt.Before(*anchor) {
		return true, anchor
	}
	return false, nil
}

// ResetFields builds the column patch applied when a new period starts.
func ResetFields(resetAt *time.Time) map[string]any {
	at := time.Now()
	if resetAt != nil {
		at = *resetAt
	}
	return map[string]any{
		"ai_call_usage":  0,
		"usage_reset_at": at,
	}
}
