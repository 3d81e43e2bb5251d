package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/workday-engine/export"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/reports"
)

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// GetReportStatus classifies every staff member's report for one day.
// GET /api/admin/reports/status?date=2025-06-10&status=missed
func (h *Handler) GetReportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.Clock.Now()
	date := generic.DateOf(now, h.Clock.Location())

	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := generic.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (want YYYY-MM-DD)", err)
			return
		}
		date = parsed
	}

	filter := reports.DayStatus(r.URL.Query().Get("status"))
	switch filter {
	case "", reports.StatusSubmitted, reports.StatusPending, reports.StatusMissed:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status filter", fmt.Errorf("unknown status %q", filter))
		return
	}

	staff, err := h.Store.ListStaff(ctx)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list staff")
		return
	}
	board, err := h.Reports.Board(ctx, date, staff, filter, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load report status")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// ListStaff returns all staff-role users.
// GET /api/admin/staff
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Store.ListStaff(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list staff")
		return
	}
	dtos := make([]StaffDTO, len(staff))
	for i, s := range staff {
		dtos[i] = toStaffDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// staffParam loads the {id} path parameter, writing 404 when unknown.
func (h *Handler) staffParam(w http.ResponseWriter, r *http.Request) (*generic.Staff, bool) {
	st, err := h.Store.GetStaff(r.Context(), generic.UserID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, err, "Failed to load staff")
		return nil, false
	}
	if st == nil {
		h.writeServiceError(w, generic.ErrUserNotFound, "Staff not found")
		return nil, false
	}
	return st, true
}

// GetStaffProfile returns identity, work hours, report timeline and score
// for one staff member's month.
// GET /api/admin/staff/{id}?month=6&year=2025
func (h *Handler) GetStaffProfile(w http.ResponseWriter, r *http.Request) {
	st, ok := h.staffParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	now := h.Clock.Now()
	month, err := monthParam(r, now, h.Clock.Location())
	if err != nil {
		h.writeServiceError(w, err, "Invalid month")
		return
	}

	history, err := h.Attendance.History(ctx, st.ID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load attendance history")
		return
	}
	timeline, err := h.Reports.Timeline(ctx, st.ID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load report history")
		return
	}
	score, err := h.Performance.Get(ctx, st.ID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compute performance")
		return
	}

	writeJSON(w, http.StatusOK, StaffProfileDTO{
		Staff:          toStaffDTO(*st),
		Month:          int(month.Month),
		Year:           month.Year,
		TotalWorkHours: history.TotalWorkHours,
		Reports:        timeline,
		Performance:    toPerformanceDTO(score),
	})
}

// GET /api/admin/staff/{id}/attendance?month=6&year=2025
func (h *Handler) GetStaffAttendance(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.staffParam(w, r); ok {
		h.writeAttendanceHistory(w, r, st.ID)
	}
}

// GET /api/admin/staff/{id}/reports?month=6&year=2025
func (h *Handler) GetStaffReports(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.staffParam(w, r); ok {
		h.writeReportTimeline(w, r, st.ID)
	}
}

// GET /api/admin/staff/{id}/performance?month=6&year=2025
func (h *Handler) GetStaffPerformance(w http.ResponseWriter, r *http.Request) {
	if st, ok := h.staffParam(w, r); ok {
		h.writePerformance(w, r, st.ID)
	}
}

// ExportStaffMonth streams the month as an .xlsx workbook.
// GET /api/admin/staff/{id}/export?month=6&year=2025
func (h *Handler) ExportStaffMonth(w http.ResponseWriter, r *http.Request) {
	st, ok := h.staffParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	now := h.Clock.Now()
	loc := h.Clock.Location()
	month, err := monthParam(r, now, loc)
	if err != nil {
		h.writeServiceError(w, err, "Invalid month")
		return
	}

	history, err := h.Attendance.History(ctx, st.ID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load attendance history")
		return
	}
	timeline, err := h.Reports.Timeline(ctx, st.ID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load report history")
		return
	}
	res, err := h.Performance.Get(ctx, st.ID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compute performance")
		return
	}

	buf, filename, err := export.MonthlyWorkbook(export.Month{
		Staff:      *st,
		Month:      month,
		Location:   loc,
		Attendance: history,
		Reports:    timeline,
		Score:      &res.Score,
	})
	if err != nil {
		h.writeServiceError(w, err, "Failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
