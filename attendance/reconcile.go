package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// RECONCILER - Sparse sessions -> gap-free daily timeline
// =============================================================================

// Input is everything one attendance reconciliation needs. Events may be in
// any order; events whose check-in day falls outside the resolved range are
// ignored.
type Input struct {
	UserID   generic.UserID
	Month    generic.MonthRef
	Now      time.Time
	Location *time.Location
	Events   []Event
}

// Range returns [start_of_month, min(end_of_month, today)]. For a month that
// lies entirely in the future the range is empty.
func Range(month generic.MonthRef, now time.Time, loc *time.Location) generic.Period {
	today := generic.DateOf(now, loc)
	return month.Period().ClampEnd(today)
}

// Reconcile expands the user's sessions into one Day per calendar day of the
// resolved range, in ascending order, and totals completed work hours.
func Reconcile(in Input) History {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	today := generic.DateOf(in.Now, loc)
	nowClock := generic.ClockOf(in.Now, loc)
	period := Range(in.Month, in.Now, loc)

	byDay := indexByDay(in.Events, period, loc)

	days := make([]Day, 0, period.Len())
	totalMinutes := 0
	for _, d := range period.Days() {
		ev, ok := byDay[d]
		if !ok {
			days = append(days, absentDay(d))
			continue
		}
		day := classify(d, ev, today, nowClock, loc)
		if day.TotalWorkMinutes != nil {
			totalMinutes += *day.TotalWorkMinutes
		}
		days = append(days, day)
	}

	return History{
		UserID:         in.UserID,
		Month:          int(in.Month.Month),
		Year:           in.Month.Year,
		TotalWorkHours: generic.Round2(decimal.NewFromInt(int64(totalMinutes)).Div(decimal.NewFromInt(60))),
		Days:           days,
	}
}

// indexByDay keys events by their check-in day. Storage guarantees one event
// per day; if that ever breaks, the earliest check-in wins.
func indexByDay(events []Event, period generic.Period, loc *time.Location) map[generic.TimePoint]Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CheckInAt.Before(sorted[j].CheckInAt)
	})

	byDay := make(map[generic.TimePoint]Event, len(sorted))
	for _, ev := range sorted {
		d := generic.DateOf(ev.CheckInAt, loc)
		if !period.Contains(d) {
			continue
		}
		if _, seen := byDay[d]; seen {
			continue
		}
		byDay[d] = ev
	}
	return byDay
}

func absentDay(d generic.TimePoint) Day {
	return Day{Date: d, Status: StatusAbsent}
}

func classify(d generic.TimePoint, ev Event, today generic.TimePoint, nowClock generic.ClockTime, loc *time.Location) Day {
	checkIn := ev.CheckInAt
	day := Day{
		Date:        d,
		CheckInTime: &checkIn,
		IsLate:      generic.ClockOf(ev.CheckInAt, loc).After(LateCheckIn),
	}

	if ev.CheckOutAt != nil {
		checkOut := *ev.CheckOutAt
		minutes := ev.WorkMinutes()
		day.Status = StatusCompleted
		day.CheckOutTime = &checkOut
		day.TotalWorkMinutes = &minutes
		day.IsLateCheckout = generic.ClockOf(checkOut, loc).After(LateCheckOut)
		return day
	}

	day.Status = StatusCheckedInOnly
	// Past days are conclusively missed; today is missed only once the
	// check-out cutoff has been reached.
	switch {
	case d.Before(today):
		day.MissedCheckout = true
	case d.Equal(today):
		day.MissedCheckout = nowClock.AfterOrEqual(LateCheckOut)
	}
	return day
}

// =============================================================================
// TODAY STATUS
// =============================================================================

// StatusToday reports today's session state from the user's events.
func StatusToday(events []Event, now time.Time, loc *time.Location) TodayStatus {
	today := generic.DateOf(now, loc)
	period := generic.Period{Start: today, End: today}
	ev, ok := indexByDay(events, period, loc)[today]
	if !ok {
		return TodayStatus{Status: TodayNotCheckedIn}
	}

	checkIn := ev.CheckInAt
	if ev.CheckOutAt == nil {
		return TodayStatus{Status: TodayCheckedIn, CheckInTime: &checkIn}
	}
	checkOut := *ev.CheckOutAt
	minutes := ev.WorkMinutes()
	return TodayStatus{
		Status:           TodayCheckedOut,
		CheckInTime:      &checkIn,
		CheckOutTime:     &checkOut,
		TotalWorkMinutes: &minutes,
	}
}

// CountCheckinDays returns the number of distinct check-in days within period.
func CountCheckinDays(events []Event, period generic.Period, loc *time.Location) int {
	return len(indexByDay(events, period, loc))
}
