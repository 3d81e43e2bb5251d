package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/reports"
	"github.com/warp/workday-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T, loc *time.Location) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:", sqlite.WithLocation(loc))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func june(t *testing.T) generic.MonthRef {
	t.Helper()
	ref, err := generic.NewMonthRef(2025, 6)
	require.NoError(t, err)
	return ref
}

func day(d int) generic.TimePoint {
	return generic.NewTimePoint(2025, time.June, d)
}

// =============================================================================
// STAFF
// =============================================================================

func TestStaff_SaveGetList(t *testing.T) {
	store := newTestStore(t, time.UTC)
	ctx := context.Background()
	dob := generic.NewTimePoint(1990, time.May, 14)
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveStaff(ctx, generic.Staff{ID: "b", Name: "Bob", Email: "bob@example.com", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.SaveStaff(ctx, generic.Staff{ID: "a", Name: "Alice", Email: "alice@example.com", DateOfBirth: &dob, CreatedAt: base}))
	require.NoError(t, store.SaveStaff(ctx, generic.Staff{ID: "admin", Email: "admin@example.com", Role: generic.RoleAdmin, CreatedAt: base}))

	got, err := store.GetStaff(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, generic.RoleStaff, got.Role, "role defaults to staff")
	require.NotNil(t, got.DateOfBirth)
	assert.True(t, got.DateOfBirth.Equal(dob))

	missing, err := store.GetStaff(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := store.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "admins are not listed")
	assert.Equal(t, generic.UserID("a"), list[0].ID)
	assert.Equal(t, generic.UserID("b"), list[1].ID)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestAttendance_OnePerDay(t *testing.T) {
	store := newTestStore(t, time.UTC)
	ctx := context.Background()
	in := time.Date(2025, time.June, 3, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertAttendance(ctx, attendance.Event{ID: "a1", UserID: "u1", CheckInAt: in, Method: attendance.MethodIP, IPAddress: "10.0.0.5"}, day(3)))
	err := store.InsertAttendance(ctx, attendance.Event{ID: "a2", UserID: "u1", CheckInAt: in.Add(time.Hour), Method: attendance.MethodIP}, day(3))
	assert.ErrorIs(t, err, generic.ErrDuplicateDay)

	// Another user on the same day is fine.
	require.NoError(t, store.InsertAttendance(ctx, attendance.Event{ID: "a3", UserID: "u2", CheckInAt: in, Method: attendance.MethodQR}, day(3)))

	attendees, err := store.AttendeesOn(ctx, day(3))
	require.NoError(t, err)
	assert.Equal(t, map[generic.UserID]bool{"u1": true, "u2": true}, attendees)
}

func TestAttendance_CloseAndRange(t *testing.T) {
	store := newTestStore(t, time.UTC)
	ctx := context.Background()
	in := time.Date(2025, time.June, 3, 8, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	require.NoError(t, store.InsertAttendance(ctx, attendance.Event{ID: "a1", UserID: "u1", CheckInAt: in, Method: attendance.MethodIP}, day(3)))

	require.NoError(t, store.CloseAttendance(ctx, "a1", out))
	assert.ErrorIs(t, store.CloseAttendance(ctx, "a1", out), generic.ErrNoOpenSession, "already closed")

	got, err := store.AttendanceOn(ctx, "u1", day(3))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CheckInAt.Equal(in))
	require.NotNil(t, got.CheckOutAt)
	assert.True(t, got.CheckOutAt.Equal(out))

	inRange, err := store.AttendanceRange(ctx, "u1", day(1), day(30))
	require.NoError(t, err)
	assert.Len(t, inRange, 1)

	outOfRange, err := store.AttendanceRange(ctx, "u1", day(4), day(30))
	require.NoError(t, err)
	assert.Empty(t, outOfRange)
}

func TestAttendance_DayColumnIsCallerDay(t *testing.T) {
	// GIVEN: A check-in at 23:30 UTC stored against the Jakarta day
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	store := newTestStore(t, jakarta)
	ctx := context.Background()
	in := time.Date(2025, time.June, 2, 23, 30, 0, 0, time.UTC)

	require.NoError(t, store.InsertAttendance(ctx, attendance.Event{ID: "a1", UserID: "u1", CheckInAt: in, Method: attendance.MethodIP}, generic.DateOf(in, jakarta)))

	// THEN: It is found on June 3
	got, err := store.AttendanceOn(ctx, "u1", day(3))
	require.NoError(t, err)
	assert.NotNil(t, got)

	n, err := store.CheckinDayCount(ctx, "u1", june(t).Period())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// =============================================================================
// REPORTS
// =============================================================================

func report(id string, d generic.TimePoint) reports.Event {
	return reports.Event{
		ID:     id,
		UserID: "u1",
		Date:   d,
		Content: reports.Content{
			Achievements:     "Shipped",
			Challenges:       "None",
			CompletedTasks:   "Export",
			PlansForTomorrow: "Tests",
		},
		CreatedAt: d.Time.Add(17 * time.Hour),
	}
}

func TestReports_Lifecycle(t *testing.T) {
	store := newTestStore(t, time.UTC)
	ctx := context.Background()

	first, err := store.FirstReportDate(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, first, "never reported")

	require.NoError(t, store.InsertReport(ctx, report("r5", day(5))))
	require.NoError(t, store.InsertReport(ctx, report("r3", day(3))))
	assert.ErrorIs(t, store.InsertReport(ctx, report("dup", day(3))), generic.ErrDuplicateDay)

	first, err = store.FirstReportDate(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Equal(day(3)))

	updatedAt := time.Date(2025, time.June, 3, 18, 0, 0, 0, time.UTC)
	edited := reports.Content{Achievements: "Shipped twice", Challenges: "None", CompletedTasks: "Export", PlansForTomorrow: "Tests"}
	require.NoError(t, store.UpdateReport(ctx, "r3", edited, updatedAt))
	assert.ErrorIs(t, store.UpdateReport(ctx, "missing", edited, updatedAt), generic.ErrReportNotFound)

	got, err := store.GetReport(ctx, "r3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Shipped twice", got.Achievements)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.Equal(updatedAt))
	assert.True(t, got.Date.Equal(day(3)))

	list, err := store.ListReports(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r5", list[0].ID, "newest first")

	ranged, err := store.ReportRange(ctx, "u1", day(1), day(4))
	require.NoError(t, err)
	require.Len(t, ranged, 1)

	empty, err := store.ListReports(ctx, "u2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	reporters, err := store.ReportersOn(ctx, day(5))
	require.NoError(t, err)
	assert.True(t, reporters["u1"])

	n, err := store.ReportCount(ctx, "u1", june(t).Period())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// =============================================================================
// TASKS
// =============================================================================

func TestTasks_RatingsByCompletionDay(t *testing.T) {
	// GIVEN: Tasks completed either side of a month boundary in Jakarta
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	store := newTestStore(t, jakarta)
	ctx := context.Background()
	rating := func(r int) *int { return &r }
	at := func(ts time.Time) *time.Time { return &ts }

	tasks := []generic.Task{
		// 18:00 UTC on May 31 is June 1 in Jakarta
		{ID: "t1", Title: "a", AssignedTo: "u1", Status: generic.TaskCompleted, Rating: rating(5), CompletedAt: at(time.Date(2025, time.May, 31, 18, 0, 0, 0, time.UTC))},
		{ID: "t2", Title: "b", AssignedTo: "u1", Status: generic.TaskCompleted, Rating: rating(3), CompletedAt: at(time.Date(2025, time.June, 15, 3, 0, 0, 0, time.UTC))},
		// 20:00 UTC on June 30 is July 1 in Jakarta
		{ID: "t3", Title: "c", AssignedTo: "u1", Status: generic.TaskCompleted, Rating: rating(1), CompletedAt: at(time.Date(2025, time.June, 30, 20, 0, 0, 0, time.UTC))},
		{ID: "t4", Title: "d", AssignedTo: "u1", Status: generic.TaskCompleted, CompletedAt: at(time.Date(2025, time.June, 10, 3, 0, 0, 0, time.UTC))},
		{ID: "t5", Title: "e", AssignedTo: "u1", Status: generic.TaskInProgress, Rating: rating(4)},
		{ID: "t6", Title: "f", AssignedTo: "u2", Status: generic.TaskCompleted, Rating: rating(2), CompletedAt: at(time.Date(2025, time.June, 10, 3, 0, 0, 0, time.UTC))},
	}
	for _, task := range tasks {
		require.NoError(t, store.SaveTask(ctx, task))
	}

	// WHEN
	ratings, err := store.CompletedTaskRatings(ctx, "u1", june(t).Period())

	// THEN: Only rated, completed June tasks for u1
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{5, 3}, ratings)

	mine, err := store.TasksFor(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 5)

	all, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestTasks_GetTaskRoundTrip(t *testing.T) {
	store := newTestStore(t, time.UTC)
	ctx := context.Background()
	deadline := day(12)
	require.NoError(t, store.SaveTask(ctx, generic.Task{
		ID:          "t1",
		Title:       "Quarterly numbers",
		Description: "Q2 close",
		CreatedBy:   "admin",
		AssignedTo:  "u1",
		Status:      generic.TaskTodo,
		Deadline:    &deadline,
		CreatedAt:   time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC),
	}))

	got, err := store.GetTask(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Q2 close", got.Description)
	assert.Equal(t, generic.UserID("admin"), got.CreatedBy)
	assert.True(t, got.Deadline.Equal(deadline))

	missing, err := store.GetTask(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTasks_OrderedByCreationInstant(t *testing.T) {
	// GIVEN: A whole-second instant and one half a second later, saved in reverse
	store := newTestStore(t, time.UTC)
	ctx := context.Background()
	whole := time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC)
	for _, task := range []generic.Task{
		{ID: "later", Title: "b", AssignedTo: "u1", Status: generic.TaskTodo, CreatedAt: whole.Add(500 * time.Millisecond)},
		{ID: "first", Title: "a", AssignedTo: "u1", Status: generic.TaskTodo, CreatedAt: whole},
	} {
		require.NoError(t, store.SaveTask(ctx, task))
	}

	// WHEN
	list, err := store.TasksFor(ctx, "u1")

	// THEN: Chronological, with sub-second precision intact
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].ID)
	assert.Equal(t, "later", list[1].ID)
	assert.Equal(t, whole.Add(500*time.Millisecond), list[1].CreatedAt)
}

// =============================================================================
// SCORES
// =============================================================================

func TestScores_FirstWriteWins(t *testing.T) {
	store := newTestStore(t, time.UTC)
	ctx := context.Background()
	computed := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)

	missing, err := store.GetScore(ctx, "u1", june(t))
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := performance.Score{ID: "s1", UserID: "u1", Month: 6, Year: 2025, Score: 65.5, ReportConsistency: 50, TaskScore: 80, AttendanceRate: 70, TrainingScore: 100, ComputedAt: computed}
	kept, err := store.InsertScoreIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "s1", kept.ID)

	second := first
	second.ID = "s2"
	second.Score = 99
	kept, err = store.InsertScoreIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "s1", kept.ID)
	assert.Equal(t, 65.5, kept.Score)
	assert.True(t, kept.ComputedAt.Equal(computed))

	got, err := store.GetScore(ctx, "u1", june(t))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 80.0, got.TaskScore)
}

// =============================================================================
// RESET
// =============================================================================

func TestReset(t *testing.T) {
	store := newTestStore(t, time.UTC)
	ctx := context.Background()
	require.NoError(t, store.SaveStaff(ctx, generic.Staff{ID: "a", Email: "a@example.com"}))
	require.NoError(t, store.InsertReport(ctx, report("r1", day(1))))
	require.NoError(t, store.Ping(ctx))

	require.NoError(t, store.Reset(ctx))

	list, err := store.ListStaff(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	n, err := store.ReportCount(ctx, "u1", june(t).Period())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
