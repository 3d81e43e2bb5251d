package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/workday-engine/reports"
)

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// SubmitReport files today's report.
// POST /api/reports
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	user := currentUser(r)
	ev, err := h.Reports.Submit(r.Context(), user.ID, req.Content, h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to submit report")
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// UpdateReport edits one of the caller's reports within the edit window.
// PUT /api/reports/{id}
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	user := currentUser(r)
	ev, err := h.Reports.Update(r.Context(), user.ID, chi.URLParam(r, "id"), req.Content, h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to update report")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// ListMyReports returns the caller's reports, newest first.
// GET /api/reports/me
func (h *Handler) ListMyReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.Reports.List(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list reports")
		return
	}
	if list == nil {
		list = []reports.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetReportHistory returns the caller's report timeline.
// GET /api/reports/history?month=6&year=2025
func (h *Handler) GetReportHistory(w http.ResponseWriter, r *http.Request) {
	h.writeReportTimeline(w, r, currentUser(r).ID)
}

// GetMyPerformance returns the caller's score for the month.
// GET /api/performance/my?month=6&year=2025
func (h *Handler) GetMyPerformance(w http.ResponseWriter, r *http.Request) {
	h.writePerformance(w, r, currentUser(r).ID)
}
