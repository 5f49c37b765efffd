package types

import "strings"

type PlanTier string

const (
	PlanTierFree PlanTier = "free"
	PlanTierPlus PlanTier = "plus"
	PlanTierPro  PlanTier = "pro"
)

// planAliases folds the web `plan` field and the legacy desktop `tier`
// field into one canonical tier. Unknown values fall through to the
// caller-provided fallback.
var planAliases = map[string]PlanTier{
	"free":     PlanTierFree,
	"standard": PlanTierPlus,
	"plus":     PlanTierPlus,
	"pro":      PlanTierPro,
	"ultra":    PlanTierPro,
	"test":     PlanTierPlus,
}

// LookupPlanAlias reports the canonical tier for a raw plan/tier string
// and whether the string named a known tier at all.
func LookupPlanAlias(raw string) (PlanTier, bool) {
	tier, ok := planAliases[strings.ToLower(strings.TrimSpace(raw))]
	return tier, ok
}

// NormalizePlanTier maps a raw plan/tier string to a canonical tier.
func NormalizePlanTier(raw string, fallback PlanTier) PlanTier {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return fallback
	}
	if tier, ok := planAliases[v]; ok {
		return tier
	}
	return fallback
}

// planLimits is the per-billing-period AI call quota for each tier.
var planLimits = map[PlanTier]int64{
	PlanTierFree: 5,
	PlanTierPlus: 220,
	PlanTierPro:  660,
}

// PlanLimit returns the AI call quota for a tier. Unknown tiers get the
// free quota.
func PlanLimit(tier PlanTier) int64 {
	if limit, ok := planLimits[tier]; ok {
		return limit
	}
	return planLimits[PlanTierFree]
}

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
	// BillingCycleTest is a legacy cycle used by internal test purchases.
	// It always resolves to the plus tier.
	BillingCycleTest BillingCycle = "test"
)

type SubscriptionStatus string

const (
	SubscriptionStatusNone      SubscriptionStatus = "none"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)
