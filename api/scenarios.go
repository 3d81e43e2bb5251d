/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates staff, attendance
	sessions, daily reports and tasks relative to the handler's clock, so
	the timelines always have something to show for the current month.

AVAILABLE SCENARIOS:

	team-month:      Admin plus three staff with different habits this month
	closed-month:    Last month's activity, ready for month-close scoring
	first-report:    One person whose first report is this month

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create staff
 3. Insert attendance sessions and reports day by day
 4. Optionally add tasks with ratings

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "team-month"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/reports"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "team-month",
		Name:        "Team Month",
		Description: "Admin and three staff: one punctual, one late with a missed checkout, one absent",
	},
	{
		ID:          "closed-month",
		Name:        "Closed Month",
		Description: "Full activity last month, nothing this month; month-close scoring applies",
	},
	{
		ID:          "first-report",
		Name:        "First Report",
		Description: "Staff member who submitted their first report mid-month",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	// Reset first
	if err := h.resetData(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	now := h.Clock.Now()
	var err error
	switch req.ScenarioID {
	case "team-month":
		err = h.loadTeamMonthScenario(ctx, now)
	case "closed-month":
		err = h.loadClosedMonthScenario(ctx, now)
	case "first-report":
		err = h.loadFirstReportScenario(ctx, now)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Logger.Info("scenario loaded", zap.String("scenario", req.ScenarioID))

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.resetData(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// scorePurger is a score cache that can be emptied.
type scorePurger interface {
	Purge(ctx context.Context) error
}

// resetData clears the database and any score cache layered over it.
func (h *Handler) resetData(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	if p, ok := h.scores.(scorePurger); ok {
		if err := p.Purge(ctx); err != nil {
			return fmt.Errorf("purge score cache: %w", err)
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadTeamMonthScenario(ctx context.Context, now time.Time) error {
	loc := h.Clock.Location()
	today := generic.DateOf(now, loc)
	monthStart := generic.MonthOf(today).Start()

	team := []generic.Staff{
		newStaff("admin-001", "Dana Admin", generic.RoleAdmin, "1985-04-12", now),
		newStaff("staff-001", "Alice Johnson", generic.RoleStaff, "1992-07-03", now),
		newStaff("staff-002", "Bob Smith", generic.RoleStaff, "1990-11-21", now),
		newStaff("staff-003", "Carol White", generic.RoleStaff, "2000-02-29", now),
	}
	if err := h.saveStaff(ctx, team...); err != nil {
		return err
	}

	// Every past day this month: Alice is early and reports daily; Bob is
	// late on even days, skips checkout on the 2nd and reports on odd days.
	// Carol never shows up.
	for d := monthStart; d.Before(today); d = d.AddDays(1) {
		if err := h.seedSession(ctx, "staff-001", d, at(6, 50), at(16, 30), loc); err != nil {
			return err
		}
		if err := h.seedReport(ctx, "staff-001", d, at(16, 45), loc); err != nil {
			return err
		}

		if d.Day()%2 == 0 {
			out := at(18, 0)
			if d.Day() == 2 {
				out = nil
			}
			if err := h.seedSession(ctx, "staff-002", d, at(7, 30), out, loc); err != nil {
				return err
			}
		} else if err := h.seedReport(ctx, "staff-002", d, at(19, 0), loc); err != nil {
			return err
		}
	}

	// Today: Alice is checked in, nobody has reported yet.
	if clock := generic.ClockOf(now, loc); clock.After(generic.NewClockTime(6, 50, 0)) {
		if err := h.seedSession(ctx, "staff-001", today, at(6, 50), nil, loc); err != nil {
			return err
		}
	}

	tasks := []generic.Task{
		completedTask("task-001", "Quarterly numbers", "staff-001", 5, monthStart, loc),
		completedTask("task-002", "Onboarding doc", "staff-001", 4, monthStart, loc),
		completedTask("task-003", "Fix invoice export", "staff-002", 3, monthStart, loc),
		openTask("task-004", "Vendor follow-up", "staff-002", today.AddDays(-1), now),
		openTask("task-005", "Team offsite plan", "staff-003", today.AddDays(7), now),
	}
	for _, t := range tasks {
		if err := h.Store.SaveTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadClosedMonthScenario(ctx context.Context, now time.Time) error {
	loc := h.Clock.Location()
	prev := generic.MonthOf(generic.DateOf(now, loc)).Previous()

	if err := h.saveStaff(ctx,
		newStaff("admin-001", "Dana Admin", generic.RoleAdmin, "1985-04-12", now),
		newStaff("staff-001", "Alice Johnson", generic.RoleStaff, "1992-07-03", now),
		newStaff("staff-002", "Bob Smith", generic.RoleStaff, "1990-11-21", now),
	); err != nil {
		return err
	}

	// Alice covered every day; Bob only the first half.
	for _, d := range prev.Period().Days() {
		if err := h.seedSession(ctx, "staff-001", d, at(8, 0), at(16, 0), loc); err != nil {
			return err
		}
		if err := h.seedReport(ctx, "staff-001", d, at(16, 10), loc); err != nil {
			return err
		}
		if d.Day() <= prev.Days()/2 {
			if err := h.seedSession(ctx, "staff-002", d, at(9, 0), at(17, 30), loc); err != nil {
				return err
			}
			if err := h.seedReport(ctx, "staff-002", d, at(17, 40), loc); err != nil {
				return err
			}
		}
	}

	return h.Store.SaveTask(ctx, completedTask("task-001", "Month-end close", "staff-001", 5, prev.Start(), loc))
}

func (h *Handler) loadFirstReportScenario(ctx context.Context, now time.Time) error {
	loc := h.Clock.Location()
	today := generic.DateOf(now, loc)
	monthStart := generic.MonthOf(today).Start()

	if err := h.saveStaff(ctx,
		newStaff("admin-001", "Dana Admin", generic.RoleAdmin, "1985-04-12", now),
		newStaff("staff-001", "Erin Park", generic.RoleStaff, "1998-09-15", now),
	); err != nil {
		return err
	}

	// First report lands mid-month, or today early in the month.
	first := monthStart.AddDays(generic.DaysBetween(monthStart, today) / 2)
	for d := first; d.BeforeOrEqual(today); d = d.AddDays(2) {
		if d.Equal(today) && generic.ClockOf(now, loc) < generic.NewClockTime(9, 0, 0) {
			break
		}
		if err := h.seedReport(ctx, "staff-001", d, at(9, 0), loc); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SEED HELPERS
// =============================================================================

// clockAt is an hour:minute offset into a day.
type clockAt struct{ hour, minute int }

func at(hour, minute int) *clockAt { return &clockAt{hour, minute} }

func (c clockAt) on(d generic.TimePoint, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.hour, c.minute, 0, 0, loc)
}

func (h *Handler) saveStaff(ctx context.Context, staff ...generic.Staff) error {
	for _, s := range staff {
		if err := h.Store.SaveStaff(ctx, s); err != nil {
			return fmt.Errorf("save staff %s: %w", s.ID, err)
		}
	}
	return nil
}

func (h *Handler) seedSession(ctx context.Context, userID string, d generic.TimePoint, in, out *clockAt, loc *time.Location) error {
	ev := attendance.Event{
		ID:        fmt.Sprintf("att-%s-%s", userID, d),
		UserID:    generic.UserID(userID),
		CheckInAt: in.on(d, loc),
		Method:    attendance.MethodIP,
	}
	if out != nil {
		t := out.on(d, loc)
		ev.CheckOutAt = &t
	}
	if err := h.Store.InsertAttendance(ctx, ev, d); err != nil {
		return fmt.Errorf("seed attendance %s: %w", ev.ID, err)
	}
	return nil
}

func (h *Handler) seedReport(ctx context.Context, userID string, d generic.TimePoint, created *clockAt, loc *time.Location) error {
	ev := reports.Event{
		ID:     fmt.Sprintf("rep-%s-%s", userID, d),
		UserID: generic.UserID(userID),
		Date:   d,
		Content: reports.Content{
			Achievements:     "Closed out the items planned yesterday",
			Challenges:       "None worth escalating",
			CompletedTasks:   "Reviewed open tickets",
			PlansForTomorrow: "Continue with the sprint backlog",
		},
		CreatedAt: created.on(d, loc),
	}
	if err := h.Store.InsertReport(ctx, ev); err != nil {
		return fmt.Errorf("seed report %s: %w", ev.ID, err)
	}
	return nil
}

func newStaff(id, name string, role generic.Role, dob string, now time.Time) generic.Staff {
	s := generic.Staff{
		ID:        generic.UserID(id),
		Name:      name,
		Email:     fmt.Sprintf("%s@example.com", id),
		Role:      role,
		CreatedAt: now,
	}
	if tp, err := generic.ParseDate(dob); err == nil {
		s.DateOfBirth = &tp
	}
	return s
}

func completedTask(id, title, assignee string, rating int, day generic.TimePoint, loc *time.Location) generic.Task {
	done := at(15, 0).on(day, loc)
	return generic.Task{
		ID:          id,
		Title:       title,
		AssignedTo:  generic.UserID(assignee),
		Status:      generic.TaskCompleted,
		Rating:      &rating,
		CreatedAt:   done.Add(-72 * time.Hour),
		CompletedAt: &done,
	}
}

func openTask(id, title, assignee string, deadline generic.TimePoint, now time.Time) generic.Task {
	return generic.Task{
		ID:         id,
		Title:      title,
		AssignedTo: generic.UserID(assignee),
		Status:     generic.TaskTodo,
		Deadline:   &deadline,
		CreatedAt:  now,
	}
}
