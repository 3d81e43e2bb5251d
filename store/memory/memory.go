// Package memory provides an in-memory implementation of every engine store
// interface. Used by package tests and for local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/reports"
	"github.com/warp/workday-engine/tasks"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu  sync.RWMutex
	loc *time.Location

	staff      map[generic.UserID]generic.Staff
	attendance map[dayKey]attendance.Event
	reports    map[dayKey]reports.Event
	tasks      map[string]generic.Task
	scores     map[scoreKey]performance.Score
}

type dayKey struct {
	UserID generic.UserID
	Day    generic.TimePoint
}

type scoreKey struct {
	UserID generic.UserID
	Month  generic.MonthRef
}

// New creates an empty store. loc is the zone used to bucket task completion
// times into days; nil means UTC.
func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		loc:        loc,
		staff:      make(map[generic.UserID]generic.Staff),
		attendance: make(map[dayKey]attendance.Event),
		reports:    make(map[dayKey]reports.Event),
		tasks:      make(map[string]generic.Task),
		scores:     make(map[scoreKey]performance.Score),
	}
}

// =============================================================================
// STAFF
// =============================================================================

func (m *Store) SaveStaff(_ context.Context, s generic.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff[s.ID] = s
	return nil
}

func (m *Store) GetStaff(_ context.Context, id generic.UserID) (*generic.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// ListStaff returns staff-role users ordered by created_at, then id.
func (m *Store) ListStaff(_ context.Context) ([]generic.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]generic.Staff, 0, len(m.staff))
	for _, s := range m.staff {
		if s.Role == generic.RoleStaff {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =============================================================================
// ATTENDANCE (attendance.Store)
// =============================================================================

func (m *Store) InsertAttendance(_ context.Context, ev attendance.Event, day generic.TimePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dayKey{UserID: ev.UserID, Day: day}
	if _, exists := m.attendance[k]; exists {
		return generic.ErrDuplicateDay
	}
	m.attendance[k] = ev
	return nil
}

func (m *Store) CloseAttendance(_ context.Context, id string, checkOutAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, ev := range m.attendance {
		if ev.ID == id {
			out := checkOutAt
			ev.CheckOutAt = &out
			m.attendance[k] = ev
			return nil
		}
	}
	return generic.ErrNoOpenSession
}

func (m *Store) AttendanceOn(_ context.Context, userID generic.UserID, day generic.TimePoint) (*attendance.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.attendance[dayKey{UserID: userID, Day: day}]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (m *Store) AttendanceRange(_ context.Context, userID generic.UserID, from, to generic.TimePoint) ([]attendance.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period := generic.Period{Start: from, End: to}
	var out []attendance.Event
	for k, ev := range m.attendance {
		if k.UserID == userID && period.Contains(k.Day) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInAt.Before(out[j].CheckInAt) })
	return out, nil
}

// AttendeesOn returns the ids of users who checked in on day.
func (m *Store) AttendeesOn(_ context.Context, day generic.TimePoint) (map[generic.UserID]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[generic.UserID]bool)
	for k := range m.attendance {
		if k.Day.Equal(day) {
			out[k.UserID] = true
		}
	}
	return out, nil
}

// =============================================================================
// REPORTS (reports.Store)
// =============================================================================

func (m *Store) InsertReport(_ context.Context, ev reports.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dayKey{UserID: ev.UserID, Day: ev.Date}
	if _, exists := m.reports[k]; exists {
		return generic.ErrDuplicateDay
	}
	m.reports[k] = ev
	return nil
}

func (m *Store) UpdateReport(_ context.Context, id string, content reports.Content, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, ev := range m.reports {
		if ev.ID == id {
			at := updatedAt
			ev.Content = content
			ev.UpdatedAt = &at
			m.reports[k] = ev
			return nil
		}
	}
	return generic.ErrReportNotFound
}

func (m *Store) GetReport(_ context.Context, id string) (*reports.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ev := range m.reports {
		if ev.ID == id {
			return &ev, nil
		}
	}
	return nil, nil
}

func (m *Store) ReportOn(_ context.Context, userID generic.UserID, day generic.TimePoint) (*reports.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.reports[dayKey{UserID: userID, Day: day}]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (m *Store) FirstReportDate(_ context.Context, userID generic.UserID) (*generic.TimePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var first *generic.TimePoint
	for k := range m.reports {
		if k.UserID != userID {
			continue
		}
		if first == nil || k.Day.Before(*first) {
			d := k.Day
			first = &d
		}
	}
	return first, nil
}

func (m *Store) ReportRange(_ context.Context, userID generic.UserID, from, to generic.TimePoint) ([]reports.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period := generic.Period{Start: from, End: to}
	var out []reports.Event
	for k, ev := range m.reports {
		if k.UserID == userID && period.Contains(k.Day) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Store) ListReports(_ context.Context, userID generic.UserID) ([]reports.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []reports.Event{}
	for k, ev := range m.reports {
		if k.UserID == userID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *Store) ReportersOn(_ context.Context, day generic.TimePoint) (map[generic.UserID]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[generic.UserID]bool)
	for k := range m.reports {
		if k.Day.Equal(day) {
			out[k.UserID] = true
		}
	}
	return out, nil
}

// =============================================================================
// TASKS
// =============================================================================

func (m *Store) SaveTask(_ context.Context, t generic.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

// GetTask returns the task or nil.
func (m *Store) GetTask(_ context.Context, id string) (*generic.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// TasksFor returns the user's tasks ordered by creation time.
func (m *Store) TasksFor(_ context.Context, userID generic.UserID) ([]generic.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []generic.Task
	for _, t := range m.tasks {
		if t.AssignedTo == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListTasks returns every task ordered by creation time.
func (m *Store) ListTasks(_ context.Context) ([]generic.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]generic.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// PERFORMANCE (performance.Source, performance.ScoreStore)
// =============================================================================

func (m *Store) ReportCount(_ context.Context, userID generic.UserID, period generic.Period) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range m.reports {
		if k.UserID == userID && period.Contains(k.Day) {
			n++
		}
	}
	return n, nil
}

func (m *Store) CheckinDayCount(_ context.Context, userID generic.UserID, period generic.Period) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range m.attendance {
		if k.UserID == userID && period.Contains(k.Day) {
			n++
		}
	}
	return n, nil
}

func (m *Store) CompletedTaskRatings(_ context.Context, userID generic.UserID, period generic.Period) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ratings []int
	for _, t := range m.tasks {
		if t.AssignedTo != userID || t.Status != generic.TaskCompleted || t.Rating == nil || t.CompletedAt == nil {
			continue
		}
		if period.Contains(generic.DateOf(*t.CompletedAt, m.loc)) {
			ratings = append(ratings, *t.Rating)
		}
	}
	return ratings, nil
}

func (m *Store) GetScore(_ context.Context, userID generic.UserID, month generic.MonthRef) (*performance.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[scoreKey{UserID: userID, Month: month}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Store) InsertScoreIfAbsent(_ context.Context, s performance.Score) (performance.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := scoreKey{UserID: s.UserID, Month: s.MonthRef()}
	if existing, ok := m.scores[k]; ok {
		return existing, nil
	}
	m.scores[k] = s
	return s, nil
}

// Reset clears all data.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff = make(map[generic.UserID]generic.Staff)
	m.attendance = make(map[dayKey]attendance.Event)
	m.reports = make(map[dayKey]reports.Event)
	m.tasks = make(map[string]generic.Task)
	m.scores = make(map[scoreKey]performance.Score)
	return nil
}

var (
	_ attendance.Store       = (*Store)(nil)
	_ reports.Store          = (*Store)(nil)
	_ performance.Source     = (*Store)(nil)
	_ performance.ScoreStore = (*Store)(nil)
	_ tasks.Store            = (*Store)(nil)
)
