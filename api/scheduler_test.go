package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
)

func TestMonthCloseScheduler_RunOnce(t *testing.T) {
	// GIVEN: Last month's activity and no stored scores
	h, _ := newTestHandler(t, testNow, Options{})
	ctx := context.Background()
	require.NoError(t, h.loadClosedMonthScenario(ctx, testNow))
	s := NewMonthCloseScheduler(h)

	// WHEN: The first pass runs
	first := s.RunOnce(ctx)

	// THEN: May is settled for both staff members
	may, err := generic.NewMonthRef(2025, 5)
	require.NoError(t, err)
	assert.True(t, first.Month.Equal(may))
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Skipped)
	assert.Equal(t, 0, first.Failed)

	alice, err := h.Store.GetScore(ctx, "staff-001", may)
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, 95.0, alice.Score)

	// WHEN: It runs again
	second := s.RunOnce(ctx)

	// THEN: Nothing is recomputed
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
}

func TestMonthCloseScheduler_KeepsExistingScore(t *testing.T) {
	// GIVEN: Alice's May score was viewed (and frozen) mid-month
	h, _ := newTestHandler(t, testNow, Options{})
	ctx := context.Background()
	require.NoError(t, h.loadClosedMonthScenario(ctx, testNow))
	may, err := generic.NewMonthRef(2025, 5)
	require.NoError(t, err)
	_, err = h.Store.InsertScoreIfAbsent(ctx, scoreFixture("frozen", "staff-001", may, 12.5))
	require.NoError(t, err)

	// WHEN
	res := NewMonthCloseScheduler(h).RunOnce(ctx)

	// THEN: Only Bob is settled; Alice keeps the frozen value
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	alice, err := h.Store.GetScore(ctx, "staff-001", may)
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, "frozen", alice.ID)
	assert.Equal(t, 12.5, alice.Score)
}

func TestMonthCloseScheduler_CachedScoreNotCreated(t *testing.T) {
	// GIVEN: The score cache already holds Alice's May score
	cache := newCachedScores()
	h, _ := newTestHandler(t, testNow, Options{Scores: cache})
	ctx := context.Background()
	require.NoError(t, h.loadClosedMonthScenario(ctx, testNow))
	may, err := generic.NewMonthRef(2025, 5)
	require.NoError(t, err)
	_, err = cache.InsertScoreIfAbsent(ctx, scoreFixture("cached", "staff-001", may, 40))
	require.NoError(t, err)

	// WHEN
	res := NewMonthCloseScheduler(h).RunOnce(ctx)

	// THEN: Alice counts as skipped since nothing new was stored
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "cached", cache.data[cachedKey("staff-001", may)].ID)
}

func TestMonthCloseScheduler_StartStop(t *testing.T) {
	h, _ := newTestHandler(t, testNow, Options{})
	s := NewMonthCloseScheduler(h)
	s.CheckInterval = time.Hour

	s.Start()
	s.Stop()
	s.Stop()

	disabled := NewMonthCloseScheduler(h)
	disabled.Enabled = false
	disabled.Start()
	disabled.Stop()
}

func scoreFixture(id string, userID generic.UserID, month generic.MonthRef, score float64) performance.Score {
	return performance.Score{
		ID:         id,
		UserID:     userID,
		Month:      int(month.Month),
		Year:       month.Year,
		Score:      score,
		ComputedAt: testNow.AddDate(0, -1, 0),
	}
}
