package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/reports"
	"github.com/warp/workday-engine/store/memory"
)

func newTestDesk(t *testing.T) (*reports.Desk, *memory.Store) {
	t.Helper()
	store := memory.New(time.UTC)
	return reports.NewDesk(store, time.UTC, zap.NewNop()), store
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestDesk_Submit(t *testing.T) {
	// GIVEN: No report today
	desk, store := newTestDesk(t)
	ctx := context.Background()
	now := time.Date(2025, time.June, 10, 17, 0, 0, 0, time.UTC)

	// WHEN
	ev, err := desk.Submit(ctx, "u1", content(), now)

	// THEN: Stored against today's date
	require.NoError(t, err)
	assert.True(t, ev.Date.Equal(day(time.June, 10)))
	assert.Equal(t, now, ev.CreatedAt)
	assert.Nil(t, ev.UpdatedAt)

	stored, err := store.ReportOn(ctx, "u1", day(time.June, 10))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, ev.ID, stored.ID)
}

func TestDesk_Submit_OncePerDay(t *testing.T) {
	desk, _ := newTestDesk(t)
	ctx := context.Background()
	_, err := desk.Submit(ctx, "u1", content(), noon(time.June, 10))
	require.NoError(t, err)

	_, err = desk.Submit(ctx, "u1", content(), noon(time.June, 10).Add(3*time.Hour))

	assert.ErrorIs(t, err, generic.ErrReportExists)
	assert.True(t, generic.IsConflict(err))
}

func TestDesk_Submit_BlankSection(t *testing.T) {
	desk, _ := newTestDesk(t)
	c := content()
	c.Challenges = "   "

	_, err := desk.Submit(context.Background(), "u1", c, noon(time.June, 10))

	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

// =============================================================================
// UPDATE
// =============================================================================

func TestDesk_Update_WithinWindow(t *testing.T) {
	desk, _ := newTestDesk(t)
	ctx := context.Background()
	created := noon(time.June, 10)
	ev, err := desk.Submit(ctx, "u1", content(), created)
	require.NoError(t, err)

	edited := content()
	edited.Achievements = "Shipped the export and the dashboards"
	updated, err := desk.Update(ctx, "u1", ev.ID, edited, created.Add(reports.EditWindow))

	require.NoError(t, err)
	assert.Equal(t, "Shipped the export and the dashboards", updated.Achievements)
	require.NotNil(t, updated.UpdatedAt)
}

func TestDesk_Update_AfterWindow(t *testing.T) {
	desk, _ := newTestDesk(t)
	ctx := context.Background()
	created := noon(time.June, 10)
	ev, err := desk.Submit(ctx, "u1", content(), created)
	require.NoError(t, err)

	_, err = desk.Update(ctx, "u1", ev.ID, content(), created.Add(reports.EditWindow+time.Second))

	assert.ErrorIs(t, err, generic.ErrEditWindowClosed)
	var windowErr *generic.EditWindowError
	require.ErrorAs(t, err, &windowErr)
	assert.Equal(t, ev.ID, windowErr.ReportID)
}

func TestDesk_Update_SomeoneElsesReport(t *testing.T) {
	desk, _ := newTestDesk(t)
	ctx := context.Background()
	ev, err := desk.Submit(ctx, "u1", content(), noon(time.June, 10))
	require.NoError(t, err)

	_, err = desk.Update(ctx, "u2", ev.ID, content(), noon(time.June, 10))
	assert.ErrorIs(t, err, generic.ErrReportNotFound)

	_, err = desk.Update(ctx, "u1", "missing", content(), noon(time.June, 10))
	assert.ErrorIs(t, err, generic.ErrReportNotFound)
}

// =============================================================================
// VIEWS
// =============================================================================

func TestDesk_ListTodayTimeline(t *testing.T) {
	// GIVEN: Reports on the 2nd and 4th, viewed on the 5th
	desk, _ := newTestDesk(t)
	ctx := context.Background()
	for _, d := range []int{2, 4} {
		_, err := desk.Submit(ctx, "u1", content(), noon(time.June, d))
		require.NoError(t, err)
	}
	now := noon(time.June, 5)

	list, err := desk.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Date.Equal(day(time.June, 4)), "newest first")

	status, err := desk.Today(ctx, "u1", now)
	require.NoError(t, err)
	assert.Equal(t, reports.StatusPending, status)

	tl, err := desk.Timeline(ctx, "u1", june2025(t), now)
	require.NoError(t, err)
	require.Len(t, tl.Reports, 4, "starts at the first report")
	assert.Equal(t, 2, tl.Count(reports.StatusSubmitted))
	assert.Equal(t, 1, tl.Count(reports.StatusMissed))
	assert.Equal(t, 1, tl.Count(reports.StatusPending))
}

func TestDesk_Timeline_NeverReported(t *testing.T) {
	desk, _ := newTestDesk(t)

	tl, err := desk.Timeline(context.Background(), "u1", june2025(t), noon(time.June, 5))

	require.NoError(t, err)
	assert.Empty(t, tl.Reports)
}

func TestDesk_Board(t *testing.T) {
	desk, _ := newTestDesk(t)
	ctx := context.Background()
	_, err := desk.Submit(ctx, "a", content(), noon(time.June, 9))
	require.NoError(t, err)
	staff := []generic.Staff{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}

	board, err := desk.Board(ctx, day(time.June, 9), staff, "", noon(time.June, 10))

	require.NoError(t, err)
	assert.Equal(t, 1, board.Summary[reports.StatusSubmitted])
	assert.Equal(t, 1, board.Summary[reports.StatusMissed])
}
