// Package roster locates the next upcoming birthday in a static roster.
package roster

import (
	"time"

	"github.com/warp/workday-engine/generic"
)

// Person is one roster entry.
type Person struct {
	UserID      generic.UserID    `json:"user_id,omitempty"`
	Name        string            `json:"name"`
	DateOfBirth generic.TimePoint `json:"date_of_birth"`
}

// Match is the person with the soonest birthday and when it falls.
type Match struct {
	Person    Person            `json:"person"`
	Date      generic.TimePoint `json:"date"`
	DaysUntil int               `json:"days_until"`
}

// NextBirthday returns whoever's next birthday is soonest on or after today.
// A birthday already passed this year moves to next year; Feb 29 falls on
// Feb 28 in common years. Ties go to the earlier roster entry. An empty
// roster returns nil.
func NextBirthday(people []Person, today generic.TimePoint) *Match {
	var best *Match
	for _, p := range people {
		if p.DateOfBirth.IsZero() {
			continue
		}
		next := Occurrence(p.DateOfBirth, today.Year())
		if next.Before(today) {
			next = Occurrence(p.DateOfBirth, today.Year()+1)
		}
		if best == nil || next.Before(best.Date) {
			best = &Match{Person: p, Date: next, DaysUntil: generic.DaysBetween(today, next)}
		}
	}
	return best
}

// Occurrence returns the birthday of dob in year.
func Occurrence(dob generic.TimePoint, year int) generic.TimePoint {
	if dob.Month() == time.February && dob.Day() == 29 && !generic.IsLeapYear(year) {
		return generic.NewTimePoint(year, time.February, 28)
	}
	return generic.NewTimePoint(year, dob.Month(), dob.Day())
}

// FromStaff builds roster entries for staff with a known date of birth.
func FromStaff(staff []generic.Staff) []Person {
	var out []Person
	for _, s := range staff {
		if s.DateOfBirth == nil {
			continue
		}
		out = append(out, Person{UserID: s.ID, Name: s.DisplayName(), DateOfBirth: *s.DateOfBirth})
	}
	return out
}
