// Package reports implements daily report submission and the day-by-day
// report timeline, which starts at the user's first-ever report.
package reports

import (
	"strings"
	"time"

	"github.com/warp/workday-engine/generic"
)

// EditWindow is how long after submission the author may still edit a report.
const EditWindow = 8 * time.Hour

// Content holds the four free-text sections of a daily report.
type Content struct {
	Achievements     string `json:"achievements" validate:"notblank"`
	Challenges       string `json:"challenges" validate:"notblank"`
	CompletedTasks   string `json:"completed_tasks" validate:"notblank"`
	PlansForTomorrow string `json:"plans_for_tomorrow" validate:"notblank"`
}

// Blank reports whether any section is empty after trimming.
func (c Content) Blank() bool {
	return strings.TrimSpace(c.Achievements) == "" ||
		strings.TrimSpace(c.Challenges) == "" ||
		strings.TrimSpace(c.CompletedTasks) == "" ||
		strings.TrimSpace(c.PlansForTomorrow) == ""
}

// Event is one stored daily report.
type Event struct {
	ID        string            `json:"id"`
	UserID    generic.UserID    `json:"user_id"`
	Date      generic.TimePoint `json:"date"`
	Content
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// =============================================================================
// DAY - Derived status for one calendar day
// =============================================================================

type DayStatus string

const (
	StatusPending   DayStatus = "pending"
	StatusSubmitted DayStatus = "submitted"
	StatusMissed    DayStatus = "missed"
)

// Day is one entry of the report timeline. The text sections are only set
// when the status is submitted.
type Day struct {
	Date             generic.TimePoint `json:"date"`
	Status           DayStatus         `json:"status"`
	Achievements     *string           `json:"achievements"`
	Challenges       *string           `json:"challenges"`
	CompletedTasks   *string           `json:"completed_tasks"`
	PlansForTomorrow *string           `json:"plans_for_tomorrow"`
}

// Timeline is the reconciled month for one user.
type Timeline struct {
	UserID  generic.UserID `json:"user_id"`
	Month   int            `json:"month"`
	Year    int            `json:"year"`
	Reports []Day          `json:"reports"`
}

// Count returns how many days carry the given status.
func (t Timeline) Count(status DayStatus) int {
	n := 0
	for _, d := range t.Reports {
		if d.Status == status {
			n++
		}
	}
	return n
}

// =============================================================================
// DAILY STATUS BOARD - One day across all staff (admin view)
// =============================================================================

type StaffStatus struct {
	ID     generic.UserID `json:"id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Status DayStatus      `json:"status"`
}

type Board struct {
	Date    generic.TimePoint `json:"date"`
	Summary map[DayStatus]int `json:"summary"`
	Staff   []StaffStatus     `json:"staff"`
}
