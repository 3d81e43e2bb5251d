package reports

import (
	"time"

	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// RECONCILER - Sparse submissions -> gap-free daily timeline
// =============================================================================

// Input is everything one report reconciliation needs. FirstReport is the
// day of the user's first-ever report, nil when there is none. Events outside
// the resolved range are ignored.
type Input struct {
	UserID      generic.UserID
	Month       generic.MonthRef
	Now         time.Time
	Location    *time.Location
	FirstReport *generic.TimePoint
	Events      []Event
}

// Range resolves [max(first_report, start_of_month), min(end_of_month, today)].
// ok is false when the user has never reported or the range is empty; both
// mean an empty timeline, not an error.
func Range(month generic.MonthRef, firstReport *generic.TimePoint, now time.Time, loc *time.Location) (generic.Period, bool) {
	if firstReport == nil {
		return generic.Period{}, false
	}
	today := generic.DateOf(now, loc)
	period := month.Period().ClampStart(*firstReport).ClampEnd(today)
	if period.IsEmpty() {
		return generic.Period{}, false
	}
	return period, true
}

// Reconcile expands the user's reports into one Day per calendar day of the
// resolved range, in ascending order.
func Reconcile(in Input) Timeline {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	timeline := Timeline{
		UserID:  in.UserID,
		Month:   int(in.Month.Month),
		Year:    in.Month.Year,
		Reports: []Day{},
	}

	period, ok := Range(in.Month, in.FirstReport, in.Now, loc)
	if !ok {
		return timeline
	}
	today := generic.DateOf(in.Now, loc)

	byDay := make(map[generic.TimePoint]Event, len(in.Events))
	for _, ev := range in.Events {
		if !period.Contains(ev.Date) {
			continue
		}
		if _, seen := byDay[ev.Date]; seen {
			continue
		}
		byDay[ev.Date] = ev
	}

	days := make([]Day, 0, period.Len())
	for _, d := range period.Days() {
		if ev, ok := byDay[d]; ok {
			days = append(days, submittedDay(d, ev.Content))
			continue
		}
		days = append(days, Day{Date: d, Status: Classify(d, today, false)})
	}
	timeline.Reports = days
	return timeline
}

// Classify returns the status of one day: submitted when a report exists,
// otherwise missed for past days and pending for today or later.
func Classify(day, today generic.TimePoint, submitted bool) DayStatus {
	switch {
	case submitted:
		return StatusSubmitted
	case day.Before(today):
		return StatusMissed
	default:
		return StatusPending
	}
}

func submittedDay(d generic.TimePoint, c Content) Day {
	return Day{
		Date:             d,
		Status:           StatusSubmitted,
		Achievements:     strPtr(c.Achievements),
		Challenges:       strPtr(c.Challenges),
		CompletedTasks:   strPtr(c.CompletedTasks),
		PlansForTomorrow: strPtr(c.PlansForTomorrow),
	}
}

func strPtr(s string) *string {
	return &s
}

// =============================================================================
// DAILY STATUS BOARD
// =============================================================================

// BuildBoard classifies every staff member for one day. filter, when set,
// keeps only staff with that status; the summary counts only kept staff.
func BuildBoard(date, today generic.TimePoint, staff []generic.Staff, submitted map[generic.UserID]bool, filter DayStatus) Board {
	board := Board{
		Date: date,
		Summary: map[DayStatus]int{
			StatusSubmitted: 0,
			StatusPending:   0,
			StatusMissed:    0,
		},
		Staff: []StaffStatus{},
	}
	for _, s := range staff {
		status := Classify(date, today, submitted[s.ID])
		if filter != "" && status != filter {
			continue
		}
		board.Staff = append(board.Staff, StaffStatus{
			ID:     s.ID,
			Name:   s.Name,
			Email:  s.Email,
			Status: status,
		})
		board.Summary[status]++
	}
	return board
}
