package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ts := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)

	t.Run("empty run", func(t *testing.T) {
		summary := Summarize(ts, nil)
		assert.Equal(t, ts, summary.Timestamp)
		assert.Zero(t, summary.TotalProcessed)
		assert.Zero(t, summary.Successful)
		assert.Zero(t, summary.Failed)
		assert.Zero(t, summary.TotalAmount)
		assert.Empty(t, summary.FailedUsers)
		assert.NotNil(t, summary.FailedUsers)
	})

	t.Run("mixed results", func(t *testing.T) {
		results := []Result{
			{UserID: "u1", Success: true, Amount: 29900, OrderID: "order_1"},
			{UserID: "u2", Success: true, Amount: 99000, OrderID: "order_2"},
			{UserID: "u3", Error: "card declined"},
			{UserID: "u4", Error: "missing payment instrument"},
		}
		summary := Summarize(ts, results)
		assert.Equal(t, 4, summary.TotalProcessed)
		assert.Equal(t, 2, summary.Successful)
		assert.Equal(t, 2, summary.Failed)
		assert.EqualValues(t, 128900, summary.TotalAmount)
		require.Len(t, summary.FailedUsers, 2)
		assert.Equal(t, "u3", summary.FailedUsers[0].UserID)
		assert.Equal(t, "card declined", summary.FailedUsers[0].Error)
	})

	t.Run("failed amounts do not count", func(t *testing.T) {
		summary := Summarize(ts, []Result{{UserID: "u1", Amount: 29900, Error: "declined"}})
		assert.Zero(t, summary.TotalAmount)
	})
}
