package generic

import "time"

// =============================================================================
// PERIOD - Inclusive day range a timeline is expanded over
// =============================================================================

// Period defines the day boundary for a timeline or a metric.
//
// Examples:
//   - Calendar month June 2025: Jun 1 - Jun 30
//   - Attendance history as of Jun 28: Jun 1 - Jun 28
//   - Report history for someone onboarded Jun 10: Jun 10 - Jun 28
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the full calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// IsEmpty reports whether the range holds no day (Start after End).
func (p Period) IsEmpty() bool {
	return p.Start.After(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
// An empty period yields an empty, non-nil slice.
func (p Period) Days() []TimePoint {
	days := make([]TimePoint, 0, p.Len())
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Len returns the number of days in the period, 0 when empty.
func (p Period) Len() int {
	if p.IsEmpty() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// ClampEnd caps the period end at the given day.
func (p Period) ClampEnd(limit TimePoint) Period {
	return Period{Start: p.Start, End: MinDate(p.End, limit)}
}

// ClampStart moves the period start forward to the given day when it is later.
func (p Period) ClampStart(limit TimePoint) Period {
	return Period{Start: MaxDate(p.Start, limit), End: p.End}
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// NextMonth returns the calendar month following the month Start falls in.
func (p Period) NextMonth() Period {
	next := StartOfMonth(p.Start.Year(), p.Start.Month()).AddMonths(1)
	return MonthPeriod(next.Year(), next.Month())
}

// PreviousMonth returns the calendar month before the month Start falls in.
func (p Period) PreviousMonth() Period {
	prev := StartOfMonth(p.Start.Year(), p.Start.Month()).AddMonths(-1)
	return MonthPeriod(prev.Year(), prev.Month())
}
