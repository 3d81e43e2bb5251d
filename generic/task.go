package generic

import "time"

// =============================================================================
// TASK - Assigned work item; only its completion and rating feed the engine
// =============================================================================

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task is an assigned work item. Rating is 1-5 and set by an admin after
// completion.
type Task struct {
	ID          string
	Title       string
	Description string
	CreatedBy   UserID
	AssignedTo  UserID
	Status      TaskStatus
	Rating      *int
	Deadline    *TimePoint
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// IsOverdue reports whether an unfinished task is past its deadline.
func (t Task) IsOverdue(today TimePoint) bool {
	return t.Status != TaskCompleted && t.Deadline != nil && t.Deadline.Before(today)
}

// ValidRating reports whether r is on the 1-5 scale.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}
