package api

import (
	"net/http"

	"github.com/warp/workday-engine/attendance"
)

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetAttendanceStatus returns the caller's session state for today.
// GET /api/attendance/status
func (h *Handler) GetAttendanceStatus(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	status, err := h.Attendance.Today(r.Context(), user.ID, h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to load attendance status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// CheckIn opens today's session.
// POST /api/attendance/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !h.decode(w, r, &req) {
		return
	}

	user := currentUser(r)
	ev, err := h.Attendance.CheckIn(r.Context(), user.ID, attendance.Method(req.Method), clientIP(r), h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to check in")
		return
	}
	writeJSON(w, http.StatusCreated, AttendanceActionResponse{
		Message:    "Checked in successfully",
		Attendance: toAttendanceEventDTO(*ev),
	})
}

// CheckOut closes today's session.
// POST /api/attendance/check-out
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ev, err := h.Attendance.CheckOut(r.Context(), user.ID, h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to check out")
		return
	}
	writeJSON(w, http.StatusOK, AttendanceActionResponse{
		Message:    "Checked out successfully",
		Attendance: toAttendanceEventDTO(*ev),
	})
}

// GetAttendanceHistory returns the caller's attendance timeline.
// GET /api/attendance/history?month=6&year=2025
func (h *Handler) GetAttendanceHistory(w http.ResponseWriter, r *http.Request) {
	h.writeAttendanceHistory(w, r, currentUser(r).ID)
}
