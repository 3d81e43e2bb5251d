package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func june2025(t *testing.T) generic.MonthRef {
	t.Helper()
	ref, err := generic.NewMonthRef(2025, 6)
	require.NoError(t, err)
	return ref
}

func utc(day, hour, minute, second int) time.Time {
	return time.Date(2025, time.June, day, hour, minute, second, 0, time.UTC)
}

func session(id string, in time.Time, out *time.Time) attendance.Event {
	return attendance.Event{ID: id, UserID: "u1", CheckInAt: in, CheckOutAt: out, Method: attendance.MethodIP}
}

func ptr(t time.Time) *time.Time { return &t }

func reconcile(t *testing.T, now time.Time, events ...attendance.Event) attendance.History {
	t.Helper()
	return attendance.Reconcile(attendance.Input{
		UserID:   "u1",
		Month:    june2025(t),
		Now:      now,
		Location: time.UTC,
		Events:   events,
	})
}

// =============================================================================
// COVERAGE AND TOTALS
// =============================================================================

func TestReconcile_JuneExample(t *testing.T) {
	// GIVEN: Two completed sessions in June, viewed on June 28
	now := utc(28, 12, 0, 0)
	events := []attendance.Event{
		session("a", utc(3, 9, 0, 0), ptr(utc(3, 17, 30, 0))),
		session("b", utc(10, 8, 0, 0), ptr(utc(10, 16, 0, 0))),
	}

	// WHEN
	h := reconcile(t, now, events...)

	// THEN: 28 days, two completed, 16.5 hours, 26 absent
	require.Len(t, h.Days, 28)
	assert.Equal(t, 16.5, h.TotalWorkHours)
	assert.Equal(t, 26, h.Count(attendance.StatusAbsent))
	assert.Equal(t, 2, h.Count(attendance.StatusCompleted))
	assert.Equal(t, 6, h.Month)
	assert.Equal(t, 2025, h.Year)

	d3 := h.Days[2]
	assert.Equal(t, attendance.StatusCompleted, d3.Status)
	require.NotNil(t, d3.TotalWorkMinutes)
	assert.Equal(t, 510, *d3.TotalWorkMinutes)
	assert.True(t, d3.IsLate, "09:00 is after 07:00")
	assert.False(t, d3.IsLateCheckout)
	assert.False(t, d3.MissedCheckout)
}

func TestReconcile_AscendingGapFree(t *testing.T) {
	h := reconcile(t, utc(28, 12, 0, 0))

	require.Len(t, h.Days, 28)
	for i, d := range h.Days {
		assert.Equal(t, i+1, d.Date.Day())
		assert.Equal(t, attendance.StatusAbsent, d.Status)
		assert.Nil(t, d.CheckInTime)
		assert.Nil(t, d.CheckOutTime)
		assert.Nil(t, d.TotalWorkMinutes)
		assert.False(t, d.IsLate || d.IsLateCheckout || d.MissedCheckout)
	}
	assert.Equal(t, 0.0, h.TotalWorkHours)
}

func TestReconcile_PastMonthCoversWholeMonth(t *testing.T) {
	h := reconcile(t, time.Date(2025, time.August, 2, 9, 0, 0, 0, time.UTC))
	assert.Len(t, h.Days, 30)
}

func TestReconcile_FutureMonthIsEmpty(t *testing.T) {
	// GIVEN: June requested on May 20
	h := reconcile(t, time.Date(2025, time.May, 20, 9, 0, 0, 0, time.UTC),
		session("x", utc(3, 8, 0, 0), nil))

	// THEN: No days, not an error
	assert.Empty(t, h.Days)
	assert.Equal(t, 0.0, h.TotalWorkHours)
}

func TestReconcile_Idempotent(t *testing.T) {
	now := utc(15, 21, 0, 0)
	events := []attendance.Event{
		session("a", utc(2, 6, 59, 0), ptr(utc(2, 20, 30, 0))),
		session("b", utc(14, 7, 30, 0), nil),
	}

	first := reconcile(t, now, events...)
	second := reconcile(t, now, events...)

	assert.Equal(t, first, second)
}

func TestReconcile_IgnoresEventsOutsideRange(t *testing.T) {
	// GIVEN: A session after today and one in May
	now := utc(10, 12, 0, 0)
	h := reconcile(t, now,
		session("future", utc(20, 8, 0, 0), ptr(utc(20, 16, 0, 0))),
		session("may", time.Date(2025, time.May, 31, 8, 0, 0, 0, time.UTC), ptr(time.Date(2025, time.May, 31, 16, 0, 0, 0, time.UTC))),
	)

	assert.Len(t, h.Days, 10)
	assert.Equal(t, 10, h.Count(attendance.StatusAbsent))
	assert.Equal(t, 0.0, h.TotalWorkHours)
}

func TestReconcile_DuplicateDayEarliestWins(t *testing.T) {
	// GIVEN: Two sessions for the same day, later one listed first
	h := reconcile(t, utc(5, 12, 0, 0),
		session("late", utc(3, 10, 0, 0), ptr(utc(3, 11, 0, 0))),
		session("early", utc(3, 6, 0, 0), ptr(utc(3, 14, 0, 0))),
	)

	d := h.Days[2]
	require.NotNil(t, d.TotalWorkMinutes)
	assert.Equal(t, 480, *d.TotalWorkMinutes)
	assert.False(t, d.IsLate)
	assert.Equal(t, 8.0, h.TotalWorkHours, "only the kept session counts")
}

func TestReconcile_NegativeDurationClampedToZero(t *testing.T) {
	h := reconcile(t, utc(5, 12, 0, 0),
		session("bad", utc(3, 10, 0, 0), ptr(utc(3, 9, 0, 0))))

	require.NotNil(t, h.Days[2].TotalWorkMinutes)
	assert.Equal(t, 0, *h.Days[2].TotalWorkMinutes)
}

func TestReconcile_MinutesFloor(t *testing.T) {
	// 8h 59m 59s floors to 539 minutes
	h := reconcile(t, utc(5, 12, 0, 0),
		session("a", utc(3, 7, 0, 0), ptr(utc(3, 15, 59, 59))))

	assert.Equal(t, 539, *h.Days[2].TotalWorkMinutes)
	assert.Equal(t, 8.98, h.TotalWorkHours)
}

// =============================================================================
// THRESHOLDS
// =============================================================================

func TestReconcile_LateCheckInBoundary(t *testing.T) {
	h := reconcile(t, utc(5, 12, 0, 0),
		session("on-time", utc(1, 7, 0, 0), ptr(utc(1, 15, 0, 0))),
		session("late", utc(2, 7, 0, 1), ptr(utc(2, 15, 0, 0))),
	)

	assert.False(t, h.Days[0].IsLate, "07:00:00 is not late")
	assert.True(t, h.Days[1].IsLate, "07:00:01 is late")
}

func TestReconcile_LateCheckOutBoundary(t *testing.T) {
	h := reconcile(t, utc(5, 12, 0, 0),
		session("on-time", utc(1, 8, 0, 0), ptr(utc(1, 20, 0, 0))),
		session("late", utc(2, 8, 0, 0), ptr(utc(2, 20, 0, 1))),
	)

	assert.False(t, h.Days[0].IsLateCheckout, "20:00:00 is not a late checkout")
	assert.True(t, h.Days[1].IsLateCheckout, "20:00:01 is a late checkout")
}

// =============================================================================
// MISSED CHECKOUT
// =============================================================================

func TestReconcile_OpenSessionOnPastDayIsMissed(t *testing.T) {
	h := reconcile(t, utc(5, 9, 0, 0), session("open", utc(3, 8, 0, 0), nil))

	d := h.Days[2]
	assert.Equal(t, attendance.StatusCheckedInOnly, d.Status)
	assert.True(t, d.MissedCheckout)
	assert.False(t, d.IsLateCheckout)
	assert.Nil(t, d.TotalWorkMinutes)
	assert.Nil(t, d.CheckOutTime)
	assert.NotNil(t, d.CheckInTime)
}

func TestReconcile_OpenSessionToday(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		missed bool
	}{
		{"before cutoff", utc(5, 19, 59, 59), false},
		{"at cutoff", utc(5, 20, 0, 0), true},
		{"after cutoff", utc(5, 22, 15, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := reconcile(t, tt.now, session("open", utc(5, 8, 0, 0), nil))

			require.Len(t, h.Days, 5)
			today := h.Days[4]
			assert.Equal(t, attendance.StatusCheckedInOnly, today.Status)
			assert.Equal(t, tt.missed, today.MissedCheckout)
		})
	}
}

// =============================================================================
// TIMEZONE
// =============================================================================

func TestReconcile_DaysFollowReferenceZone(t *testing.T) {
	// GIVEN: A check-in at 23:30 UTC on June 2, which is June 3 06:30 in Jakarta
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	in := utc(2, 23, 30, 0)
	out := utc(3, 8, 0, 0)

	// WHEN: Reconciled in Jakarta
	h := attendance.Reconcile(attendance.Input{
		UserID:   "u1",
		Month:    june2025(t),
		Now:      time.Date(2025, time.June, 5, 12, 0, 0, 0, jakarta),
		Location: jakarta,
		Events:   []attendance.Event{session("a", in, &out)},
	})

	// THEN: The session lands on June 3 and is on time (06:30 local)
	assert.Equal(t, attendance.StatusAbsent, h.Days[1].Status)
	assert.Equal(t, attendance.StatusCompleted, h.Days[2].Status)
	assert.False(t, h.Days[2].IsLate)
}

// =============================================================================
// TODAY STATUS AND COUNTS
// =============================================================================

func TestStatusToday(t *testing.T) {
	now := utc(5, 12, 0, 0)

	none := attendance.StatusToday(nil, now, time.UTC)
	assert.Equal(t, attendance.TodayNotCheckedIn, none.Status)

	open := attendance.StatusToday([]attendance.Event{session("a", utc(5, 8, 0, 0), nil)}, now, time.UTC)
	assert.Equal(t, attendance.TodayCheckedIn, open.Status)
	assert.NotNil(t, open.CheckInTime)
	assert.Nil(t, open.TotalWorkMinutes)

	closed := attendance.StatusToday([]attendance.Event{session("a", utc(5, 8, 0, 0), ptr(utc(5, 11, 30, 0)))}, now, time.UTC)
	assert.Equal(t, attendance.TodayCheckedOut, closed.Status)
	require.NotNil(t, closed.TotalWorkMinutes)
	assert.Equal(t, 210, *closed.TotalWorkMinutes)

	yesterday := attendance.StatusToday([]attendance.Event{session("a", utc(4, 8, 0, 0), nil)}, now, time.UTC)
	assert.Equal(t, attendance.TodayNotCheckedIn, yesterday.Status)
}

func TestCountCheckinDays(t *testing.T) {
	events := []attendance.Event{
		session("a", utc(1, 8, 0, 0), nil),
		session("b", utc(1, 9, 0, 0), nil),
		session("c", utc(2, 8, 0, 0), nil),
		session("d", time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC), nil),
	}
	assert.Equal(t, 2, attendance.CountCheckinDays(events, june2025(t).Period(), time.UTC))
}
