package api

import (
	"context"
	"net/http"

	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/roster"
)

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// GetDashboard returns the caller's landing page.
// GET /api/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(r)
	now := h.Clock.Now()
	today := generic.DateOf(now, h.Clock.Location())

	people, err := h.birthdayRoster(ctx)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load roster")
		return
	}

	reportStatus, err := h.Reports.Today(ctx, user.ID, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load report status")
		return
	}

	attendanceStatus, err := h.Attendance.Today(ctx, user.ID, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load attendance status")
		return
	}

	tasks, err := h.Store.TasksFor(ctx, user.ID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load tasks")
		return
	}
	open := 0
	for _, t := range tasks {
		if t.Status != generic.TaskCompleted {
			open++
		}
	}

	writeJSON(w, http.StatusOK, DashboardDTO{
		NextBirthday: roster.NextBirthday(people, today),
		CurrentUser: CurrentUserDTO{
			ID:               user.ID.String(),
			Name:             user.DisplayName(),
			ReportStatus:     reportStatus,
			UncompletedTasks: open,
		},
		Attendance: attendanceStatus,
	})
}

// birthdayRoster prefers the configured roster and falls back to staff
// records with a date of birth.
func (h *Handler) birthdayRoster(ctx context.Context) ([]roster.Person, error) {
	if len(h.Roster) > 0 {
		return h.Roster, nil
	}
	staff, err := h.Store.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	return roster.FromStaff(staff), nil
}

// GetAdminDashboard summarizes today across all staff.
// GET /api/admin/dashboard
func (h *Handler) GetAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.Clock.Now()
	today := generic.DateOf(now, h.Clock.Location())

	staff, err := h.Store.ListStaff(ctx)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list staff")
		return
	}

	attendees, err := h.Store.AttendeesOn(ctx, today)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load attendance")
		return
	}
	checkedIn := 0
	for _, s := range staff {
		if attendees[s.ID] {
			checkedIn++
		}
	}

	board, err := h.Reports.Board(ctx, today, staff, "", now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load report status")
		return
	}

	tasks, err := h.Store.ListTasks(ctx)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load tasks")
		return
	}
	var summary TaskSummaryDTO
	for _, t := range tasks {
		summary.Total++
		if t.Status == generic.TaskCompleted {
			summary.Completed++
		}
		if t.IsOverdue(today) {
			summary.Overdue++
		}
	}

	writeJSON(w, http.StatusOK, AdminDashboardDTO{
		Date:       today.String(),
		TotalStaff: len(staff),
		Attendance: AttendanceSummaryDTO{
			CheckedIn:    checkedIn,
			NotCheckedIn: len(staff) - checkedIn,
		},
		Reports: board.Summary,
		Tasks:   summary,
	})
}
