package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlanTier(t *testing.T) {
	tests := []struct {
		raw      string
		fallback PlanTier
		want     PlanTier
	}{
		{"free", PlanTierFree, PlanTierFree},
		{"plus", PlanTierFree, PlanTierPlus},
		{"pro", PlanTierFree, PlanTierPro},
		{"standard", PlanTierFree, PlanTierPlus},
		{"ultra", PlanTierFree, PlanTierPro},
		{"test", PlanTierFree, PlanTierPlus},
		{"PRO", PlanTierFree, PlanTierPro},
		{"  plus  ", PlanTierFree, PlanTierPlus},
		{"", PlanTierPlus, PlanTierPlus},
		{"mystery", PlanTierFree, PlanTierFree},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePlanTier(tt.raw, tt.fallback), "raw=%q", tt.raw)
	}
}

func TestLookupPlanAlias(t *testing.T) {
	tier, ok := LookupPlanAlias("ultra")
	assert.True(t, ok)
	assert.Equal(t, PlanTierPro, tier)

	_, ok = LookupPlanAlias("mystery")
	assert.False(t, ok)
}

func TestPlanLimit(t *testing.T) {
	assert.EqualValues(t, 5, PlanLimit(PlanTierFree))
	assert.EqualValues(t, 220, PlanLimit(PlanTierPlus))
	assert.EqualValues(t, 660, PlanLimit(PlanTierPro))
	assert.EqualValues(t, 5, PlanLimit(PlanTier("mystery")))
}
