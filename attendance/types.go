// Package attendance implements check-in/check-out tracking and the
// day-by-day attendance timeline built on top of it.
// It uses the generic package for day arithmetic and range resolution.
package attendance

import (
	"time"

	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// BUSINESS DAY THRESHOLDS
// =============================================================================

var (
	// LateCheckIn: a check-in strictly after 07:00:00 is late.
	LateCheckIn = generic.NewClockTime(7, 0, 0)

	// LateCheckOut: a check-out strictly after 20:00:00 is late; an open
	// session is missed once the current time reaches 20:00:00.
	LateCheckOut = generic.NewClockTime(20, 0, 0)
)

// Method is how a check-in was made.
type Method string

const (
	MethodIP Method = "IP"
	MethodQR Method = "QR"
)

// =============================================================================
// EVENT - One work session as stored
// =============================================================================

// Event is a check-in with an optional check-out. CheckOutAt is nil while the
// session is open.
type Event struct {
	ID         string
	UserID     generic.UserID
	CheckInAt  time.Time
	CheckOutAt *time.Time
	Method     Method
	IPAddress  string
}

// IsOpen reports whether the session has no check-out yet.
func (e Event) IsOpen() bool { return e.CheckOutAt == nil }

// WorkMinutes returns whole minutes between check-in and check-out, never
// negative. Open sessions return 0.
func (e Event) WorkMinutes() int {
	if e.CheckOutAt == nil {
		return 0
	}
	d := e.CheckOutAt.Sub(e.CheckInAt)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// =============================================================================
// DAY - Derived status for one calendar day
// =============================================================================

type DayStatus string

const (
	StatusAbsent        DayStatus = "absent"
	StatusCheckedInOnly DayStatus = "checked_in_only"
	StatusCompleted     DayStatus = "completed"
)

// Day is one entry of the attendance timeline. Times and minutes are only set
// for the statuses that carry them: absent has none, checked_in_only has a
// check-in time, completed has both times and the minutes worked.
type Day struct {
	Date             generic.TimePoint `json:"date"`
	Status           DayStatus         `json:"status"`
	CheckInTime      *time.Time        `json:"check_in_time"`
	CheckOutTime     *time.Time        `json:"check_out_time"`
	TotalWorkMinutes *int              `json:"total_work_time_minutes"`
	IsLate           bool              `json:"is_late"`
	IsLateCheckout   bool              `json:"is_late_checkout"`
	MissedCheckout   bool              `json:"missed_checkout"`
}

// History is the reconciled month for one user.
type History struct {
	UserID         generic.UserID `json:"user_id"`
	Month          int            `json:"month"`
	Year           int            `json:"year"`
	TotalWorkHours float64        `json:"total_work_hours"`
	Days           []Day          `json:"days"`
}

// Count returns how many days carry the given status.
func (h History) Count(status DayStatus) int {
	n := 0
	for _, d := range h.Days {
		if d.Status == status {
			n++
		}
	}
	return n
}

// =============================================================================
// TODAY STATUS - Self-service "where am I today" view
// =============================================================================

type TodayState string

const (
	TodayNotCheckedIn TodayState = "not_checked_in"
	TodayCheckedIn    TodayState = "checked_in"
	TodayCheckedOut   TodayState = "checked_out"
)

type TodayStatus struct {
	Status           TodayState `json:"status"`
	CheckInTime      *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime     *time.Time `json:"check_out_time,omitempty"`
	TotalWorkMinutes *int       `json:"total_work_time_minutes,omitempty"`
}
