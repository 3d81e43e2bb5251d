/*
errors.go - Centralized error types for the workday engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (or wrap them) so the HTTP layer can map
  them to a status code without string matching.

ERROR CATEGORIES:
  1. Validation errors - Bad month/year, bad request bodies ("bad request")
  2. Workflow errors   - Check-in/out and report submission rule violations
  3. Lookup errors     - Missing users, reports, tasks

  "No data" is never an error: empty ranges produce empty or fully
  absent/pending timelines.

USAGE:
    if errors.Is(err, generic.ErrInvalidMonth) {
        // 400
    }

SEE ALSO:
  - attendance/recorder.go: check-in/check-out rules
  - reports/desk.go: submission and edit-window rules
  - tasks/tracker.go: completion and rating rules
  - api/handlers.go: status code mapping
*/
package generic

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidMonth is returned when month is outside 1..12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidYear is returned when year is outside 1900..2100.
	ErrInvalidYear = errors.New("invalid year")

	// ErrInvalidInput is returned for malformed request payloads.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyCheckedIn is returned when today's session is still open.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrAlreadyCompleted is returned when today's session is already closed.
	ErrAlreadyCompleted = errors.New("attendance already completed for today")

	// ErrNoOpenSession is returned on check-out without an open session today.
	ErrNoOpenSession = errors.New("no active check-in found for today")

	// ErrIPNotAllowed is returned when a check-in comes from outside the office allow-list.
	ErrIPNotAllowed = errors.New("ip not allowed for check-in")

	// ErrReportExists is returned on a second report for the same day.
	ErrReportExists = errors.New("report already submitted for this day")

	// ErrReportNotFound is returned when a report does not exist or belongs to someone else.
	ErrReportNotFound = errors.New("report not found")

	// ErrEditWindowClosed is returned when a report is edited after the edit window.
	ErrEditWindowClosed = errors.New("report edit window has closed")

	// ErrTaskNotFound is returned when a task does not exist or is not the caller's.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskAlreadyCompleted is returned when completing a finished task.
	ErrTaskAlreadyCompleted = errors.New("task already completed")

	// ErrTaskNotCompleted is returned when rating an unfinished task.
	ErrTaskNotCompleted = errors.New("task must be completed before rating")

	// ErrInvalidRating is returned for a rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrUserNotFound is returned when a referenced staff member doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateDay is returned by stores when a (user, day) uniqueness constraint fires.
	ErrDuplicateDay = errors.New("duplicate record for day")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s=%v", e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// EditWindowError reports when a report stopped being editable.
type EditWindowError struct {
	ReportID  string
	CreatedAt time.Time
	Window    time.Duration
}

func (e *EditWindowError) Error() string {
	return fmt.Sprintf("report %s can only be edited within %v of submission (submitted %s)",
		e.ReportID, e.Window, e.CreatedAt.Format(time.RFC3339))
}

func (e *EditWindowError) Unwrap() error {
	return ErrEditWindowClosed
}

// IPNotAllowedError names the rejected client address.
type IPNotAllowedError struct {
	IP string
}

func (e *IPNotAllowedError) Error() string {
	return fmt.Sprintf("IP %s not allowed for check-in", e.IP)
}

func (e *IPNotAllowedError) Unwrap() error {
	return ErrIPNotAllowed
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidYear) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrAlreadyCheckedIn) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrNoOpenSession) ||
		errors.Is(err, ErrTaskAlreadyCompleted) ||
		errors.Is(err, ErrTaskNotCompleted) ||
		errors.Is(err, ErrInvalidRating)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrReportExists) ||
		errors.Is(err, ErrDuplicateDay)
}

// IsForbidden returns true if the caller may not perform the action.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrIPNotAllowed) ||
		errors.Is(err, ErrEditWindowClosed)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
