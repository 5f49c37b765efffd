package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/types"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestResetAnchor(t *testing.T) {
	assert.Nil(t, ResetAnchor(nil))
	assert.Nil(t, ResetAnchor(&models.Subscription{}))

	sub := &models.Subscription{
		LastPaymentDate: ts("2026-08-01T00:00:00Z"),
		RegisteredAt:    ts("2026-07-01T00:00:00Z"),
		StartDate:       ts("2026-06-01T00:00:00Z"),
	}
	require.NotNil(t, ResetAnchor(sub))
	assert.Equal(t, *ts("2026-08-01T00:00:00Z"), *ResetAnchor(sub))

	sub.LastPaymentDate = nil
	assert.Equal(t, *ts("2026-07-01T00:00:00Z"), *ResetAnchor(sub))

	sub.RegisteredAt = nil
	assert.Equal(t, *ts("2026-06-01T00:00:00Z"), *ResetAnchor(sub))
}

func TestNeedsReset(t *testing.T) {
	anchor := ts("2026-08-01T00:00:00Z")

	newUser := func(resetAt *time.Time) *models.User {
		u := &models.User{ID: "u1", AICallUsage: 42, UsageResetAt: resetAt}
		u.SetSubscription(&models.Subscription{LastPaymentDate: anchor})
		return u
	}

	t.Run("free tier never resets", func(t *testing.T) {
		should, _ := NeedsReset(newUser(nil), types.PlanTierFree)
		assert.False(t, should)
	})

	t.Run("no anchor no reset", func(t *testing.T) {
		u := &models.User{ID: "u1"}
		should, _ := NeedsReset(u, types.PlanTierPlus)
		assert.False(t, should)
	})

	t.Run("missing resetAt resets to anchor", func(t *testing.T) {
		should, at := NeedsReset(newUser(nil), types.PlanTierPlus)
		assert.True(t, should)
		require.NotNil(t, at)
		assert.Equal(t, *anchor, *at)
	})

	t.Run("stale resetAt resets", func(t *testing.T) {
		should, at := NeedsReset(newUser(ts("2026-07-15T00:00:00Z")), types.PlanTierPro)
		assert.True(t, should)
		assert.Equal(t, *anchor, *at)
	})

	t.Run("idempotent once anchor applied", func(t *testing.T) {
		u := newUser(nil)
		should, at := NeedsReset(u, types.PlanTierPlus)
		require.True(t, should)
		u.UsageResetAt = at
		should, _ = NeedsReset(u, types.PlanTierPlus)
		assert.False(t, should)
	})
}

func TestResetFields(t *testing.T) {
	anchor := ts("2026-08-01T00:00:00Z")
	fields := ResetFields(anchor)
	assert.Equal(t, 0, fields["ai_call_usage"])
	assert.Equal(t, *anchor, fields["usage_reset_at"])

	before := time.Now()
	fields = ResetFields(nil)
	at, ok := fields["usage_reset_at"].(time.Time)
	require.True(t, ok)
	assert.False(t, at.Before(before))
}

func TestBuildStatus(t *testing.T) {
	st := buildStatus(types.PlanTierPlus, 219)
	assert.True(t, st.CanUse)
	assert.EqualValues(t, 1, st.Remaining)

	st = buildStatus(types.PlanTierPlus, 220)
	assert.False(t, st.CanUse)
	assert.EqualValues(t, 0, st.Remaining)

	st = buildStatus(types.PlanTierFree, 9)
	assert.False(t, st.CanUse)
	assert.EqualValues(t, 0, st.Remaining)
}
