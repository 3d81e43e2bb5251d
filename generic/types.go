/*
Package generic provides the shared primitives of the workday engine.

PURPOSE:
  This package contains domain-agnostic types used by every reconciler and
  by the scorer. Whether expanding attendance sessions, daily reports, or
  computing a monthly score, the same day arithmetic, range resolution and
  validation rules apply.

KEY CONCEPTS IN THIS FILE (types.go):
  - UserID: Type-safe staff identifier
  - MonthRef: A validated (year, month) pair
  - Decimal helpers: 2-decimal rounding used by hours and scores

DESIGN PRINCIPLES:
  1. Purity: Nothing here reads ambient time; callers pass a Clock or instant
  2. Precision: Rounding goes through decimal.Decimal, not float formatting
  3. Type Safety: Strong typing for IDs and days

USAGE:
  ref, err := generic.NewMonthRef(2025, 6)
  if err != nil {
      // *ValidationError wrapping ErrInvalidMonth / ErrInvalidYear
  }
  days := ref.Period().Days()

SEE ALSO:
  - time.go: TimePoint, ClockTime, Clock
  - period.go: Period range resolution
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string

func (u UserID) String() string { return string(u) }

// =============================================================================
// MONTH REFERENCE - Validated input contract for every monthly view
// =============================================================================

const (
	MinYear = 1900
	MaxYear = 2100
)

// MonthRef identifies a calendar month.
type MonthRef struct {
	Year  int
	Month time.Month
}

// NewMonthRef validates month in [1,12] and year in [1900,2100].
func NewMonthRef(year, month int) (MonthRef, error) {
	if err := ValidateMonthYear(month, year); err != nil {
		return MonthRef{}, err
	}
	return MonthRef{Year: year, Month: time.Month(month)}, nil
}

// MonthOf returns the month containing day.
func MonthOf(day TimePoint) MonthRef {
	return MonthRef{Year: day.Year(), Month: day.Month()}
}

// ValidateMonthYear is the engine's validation boundary.
func ValidateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Value: month, Err: ErrInvalidMonth}
	}
	if year < MinYear || year > MaxYear {
		return &ValidationError{Field: "year", Value: year, Err: ErrInvalidYear}
	}
	return nil
}

func (m MonthRef) Period() Period        { return MonthPeriod(m.Year, m.Month) }
func (m MonthRef) Days() int             { return DaysInMonth(m.Year, m.Month) }
func (m MonthRef) Start() TimePoint      { return StartOfMonth(m.Year, m.Month) }
func (m MonthRef) End() TimePoint        { return EndOfMonth(m.Year, m.Month) }
func (m MonthRef) Previous() MonthRef    { return MonthOf(m.Start().AddMonths(-1)) }
func (m MonthRef) String() string        { return m.Start().Time.Format("2006-01") }
func (m MonthRef) Equal(o MonthRef) bool { return m.Year == o.Year && m.Month == o.Month }

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// Round2 rounds to two decimal places (half away from zero).
func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Percent returns part/whole*100 capped to [0, 100]. A zero or negative
// whole yields 0.
func Percent(part, whole int) decimal.Decimal {
	if whole <= 0 || part <= 0 {
		return decimal.Zero
	}
	return Clamp100(decimal.NewFromInt(int64(part)).Div(decimal.NewFromInt(int64(whole))).Mul(hundred))
}

// Clamp100 bounds d to [0, 100].
func Clamp100(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

var hundred = decimal.NewFromInt(100)
