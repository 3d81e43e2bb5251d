package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Civil calendar day (the unit every timeline is expanded over)
// =============================================================================

// TimePoint is a calendar day. The wrapped time is always midnight UTC of that
// civil date; the reference zone is applied once, in DateOf, when an instant is
// turned into a day.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the civil day on which instant t falls in loc.
func DateOf(t time.Time, loc *time.Location) TimePoint {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return NewTimePoint(local.Year(), local.Month(), local.Day())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
}

const DateLayout = "2006-01-02"

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.normalize().AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

// MarshalText renders the day as YYYY-MM-DD so DTOs and JSON never leak a clock time.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// MinDate and MaxDate pick the earlier/later of two days.
func MinDate(a, b TimePoint) TimePoint {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b TimePoint) TimePoint {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// TIME OF DAY - Threshold checks against wall-clock time in the reference zone
// =============================================================================

// ClockTime is the offset from local midnight, nanosecond precise.
type ClockTime time.Duration

func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// ClockOf returns the wall-clock time of instant t in loc.
func ClockOf(t time.Time, loc *time.Location) ClockTime {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return NewClockTime(local.Hour(), local.Minute(), local.Second()) + ClockTime(local.Nanosecond())
}

func (c ClockTime) After(other ClockTime) bool        { return c > other }
func (c ClockTime) AfterOrEqual(other ClockTime) bool { return c >= other }

// =============================================================================
// CLOCK - Single reference instant per call
// =============================================================================

// Clock supplies "now" and the reference zone. Handlers read it once per
// request and thread the instant through every reconciliation and scoring call.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// SystemClock reads wall time in a fixed zone.
type SystemClock struct {
	Zone *time.Location
}

func (c SystemClock) Now() time.Time { return time.Now().In(c.Location()) }

func (c SystemClock) Location() *time.Location {
	if c.Zone == nil {
		return time.UTC
	}
	return c.Zone
}

// FixedClock always reports the same instant. Used by tests and scenario loading.
type FixedClock struct {
	At   time.Time
	Zone *time.Location
}

func (c FixedClock) Now() time.Time { return c.At.In(c.Location()) }

func (c FixedClock) Location() *time.Location {
	if c.Zone == nil {
		return time.UTC
	}
	return c.Zone
}

// =============================================================================
// TIME UTILITIES
// =============================================================================
// Note: Period type is defined in period.go to avoid duplication

func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}

// DaysInMonth returns the number of calendar days in month/year.
func DaysInMonth(year int, month time.Month) int {
	return EndOfMonth(year, month).Day()
}

// IsLeapYear reports whether Feb 29 exists in year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
