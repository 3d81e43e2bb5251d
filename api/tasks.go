package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/tasks"
)

// =============================================================================
// TASK HANDLERS
// =============================================================================

// ListMyTasks returns the caller's tasks with completed/overdue/pending counts.
// GET /api/tasks/me
func (h *Handler) ListMyTasks(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Tasks.Mine(r.Context(), currentUser(r).ID, h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, MyTasksDTO{
		Total:     summary.Total,
		Completed: summary.Completed,
		Overdue:   summary.Overdue,
		Pending:   summary.Pending,
		Tasks:     toTaskDTOs(summary.Tasks),
	})
}

// CompleteTask marks one of the caller's tasks completed.
// POST /api/tasks/{id}/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.Tasks.Complete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to complete task")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(*task))
}

// CreateTask assigns a task to a staff member.
// POST /api/admin/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	deadline, err := generic.ParseDate(req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid deadline", err)
		return
	}

	task, err := h.Tasks.Create(r.Context(), currentUser(r).ID, tasks.NewTask{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  generic.UserID(req.AssignedTo),
		Deadline:    deadline,
	}, h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(*task))
}

// RateTask rates a completed task 1-5.
// POST /api/admin/tasks/{id}/rate
func (h *Handler) RateTask(w http.ResponseWriter, r *http.Request) {
	var req RateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.Tasks.Rate(r.Context(), chi.URLParam(r, "id"), req.Rating)
	if err != nil {
		h.writeServiceError(w, err, "Failed to rate task")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(*task))
}

// ListTasks lists tasks across staff.
// GET /api/admin/tasks?assigned_to&status&overdue
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := tasks.Filter{
		AssignedTo: generic.UserID(q.Get("assigned_to")),
		Status:     generic.TaskStatus(q.Get("status")),
	}
	switch filter.Status {
	case "", generic.TaskTodo, generic.TaskInProgress, generic.TaskCompleted:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status filter", nil)
		return
	}
	if v := q.Get("overdue"); v != "" {
		overdue, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid overdue filter", err)
			return
		}
		filter.Overdue = &overdue
	}

	list, err := h.Tasks.List(r.Context(), filter, h.Clock.Now())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(list))
}
