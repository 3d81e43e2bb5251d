package api

import (
	"net/http"

	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// SHARED TIMELINE VIEWS
// =============================================================================
//
// Self-service and admin routes differ only in whose id they pass here.

func (h *Handler) writeAttendanceHistory(w http.ResponseWriter, r *http.Request, userID generic.UserID) {
	now := h.Clock.Now()
	month, err := monthParam(r, now, h.Clock.Location())
	if err != nil {
		h.writeServiceError(w, err, "Invalid month")
		return
	}
	history, err := h.Attendance.History(r.Context(), userID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load attendance history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) writeReportTimeline(w http.ResponseWriter, r *http.Request, userID generic.UserID) {
	now := h.Clock.Now()
	month, err := monthParam(r, now, h.Clock.Location())
	if err != nil {
		h.writeServiceError(w, err, "Invalid month")
		return
	}
	timeline, err := h.Reports.Timeline(r.Context(), userID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load report history")
		return
	}
	writeJSON(w, http.StatusOK, timeline)
}

func (h *Handler) writePerformance(w http.ResponseWriter, r *http.Request, userID generic.UserID) {
	now := h.Clock.Now()
	month, err := monthParam(r, now, h.Clock.Location())
	if err != nil {
		h.writeServiceError(w, err, "Invalid month")
		return
	}
	res, err := h.Performance.Get(r.Context(), userID, month, now)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compute performance")
		return
	}
	writeJSON(w, http.StatusOK, toPerformanceDTO(res))
}
