package plan

import (
	"strings"

	"github.com/samber/lo"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/types"
)

// Input carries every raw field a user's tier may be recorded in. The
// web app, the desktop app and the payment pipeline each wrote tier
// information to a different place historically, so resolution has to
// consult all of them.
type Input struct {
	Plan             string
	SubscriptionPlan string
	Tier             string
	Amount           int64
	BillingCycle     types.BillingCycle
	OrderName        string
}

// InputFromUser extracts resolver input from a stored user record.
func InputFromUser(user *models.User) Input {
	in := Input{Plan: user.Plan, Tier: user.Tier}
	if sub := user.GetSubscription(); sub != nil {
		in.SubscriptionPlan = sub.Plan
		in.Amount = sub.Amount
		in.BillingCycle = sub.BillingCycle
		in.OrderName = sub.OrderName
	}
	return in
}

// Resolve maps raw subscription fields to exactly one canonical tier.
// Resolution order, first match wins:
//  1. an explicit pro-level value in any plan field
//  2. an explicit plus-level (or legacy test) value in any plan field
//  3. a positive amount, matched against the price table
//  4. tier keywords in the order name
//  5. free
func Resolve(in Input) types.PlanTier {
	fields := []string{in.Plan, in.SubscriptionPlan, in.Tier}

	if lo.SomeBy(fields, func(f string) bool { return explicitTier(f) == types.PlanTierPro }) {
		return types.PlanTierPro
	}
	if lo.SomeBy(fields, func(f string) bool { return explicitTier(f) == types.PlanTierPlus }) {
		return types.PlanTierPlus
	}

	if in.Amount > 0 || in.BillingCycle == types.BillingCycleTest {
		if tier := TierFromAmount(in.Amount, in.BillingCycle); tier != types.PlanTierFree {
			return tier
		}
	}

	if tier, ok := tierFromOrderName(in.OrderName); ok {
		return tier
	}
	return types.PlanTierFree
}

// ResolveUser is Resolve applied to a stored user record.
func ResolveUser(user *models.User) types.PlanTier {
	return Resolve(InputFromUser(user))
}

// Quota returns the per-period AI call quota for a tier.
func Quota(tier types.PlanTier) int64 {
	return types.PlanLimit(tier)
}

func explicitTier(raw string) types.PlanTier {
	tier, ok := types.LookupPlanAlias(raw)
	if !ok || tier == types.PlanTierFree {
		return ""
	}
	return tier
}

// Exact price points from the legacy billing configuration. The values
// overlap the range rules below (29900 appears in both) and 99000 sits
// on a range boundary; the table is kept exactly as the production data
// expects it, do not "fix" the boundaries.
var (
	plusAmounts = []int64{60, 100, 720, 840, 29900, 251160}
	proAmounts  = []int64{99000, 59400, 712800, 831600}
)

// TierFromAmount infers a tier from a subscription amount and billing
// cycle. Test-cycle purchases are always plus regardless of amount.
func TierFromAmount(amount int64, cycle types.BillingCycle) types.PlanTier {
	if cycle == types.BillingCycleTest {
		return types.PlanTierPlus
	}
	if lo.Contains(proAmounts, amount) {
		return types.PlanTierPro
	}
	if lo.Contains(plusAmounts, amount) {
		return types.PlanTierPlus
	}
	switch {
	case amount > 29900 && amount < 99000:
		return types.PlanTierPlus
	case amount > 99000:
		return types.PlanTierPro
	case amount > 0:
		return types.PlanTierPlus
	}
	return types.PlanTierFree
}

func tierFromOrderName(orderName string) (types.PlanTier, bool) {
	name := strings.ToLower(orderName)
	if name == "" {
		return "", false
	}
	if strings.Contains(name, "ultra") || strings.Contains(name, "pro") {
		return types.PlanTierPro, true
	}
	if strings.Contains(name, "plus") {
		return types.PlanTierPlus, true
	}
	return "", false
}
