// Package tasks is the assignment workflow behind the task_score sub-metric:
// an admin assigns a task, the assignee completes it, and an admin rates it.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
)

// Store persists tasks and resolves assignees.
type Store interface {
	GetStaff(ctx context.Context, id generic.UserID) (*generic.Staff, error)
	SaveTask(ctx context.Context, t generic.Task) error

	// GetTask returns the task or nil.
	GetTask(ctx context.Context, id string) (*generic.Task, error)

	TasksFor(ctx context.Context, userID generic.UserID) ([]generic.Task, error)
	ListTasks(ctx context.Context) ([]generic.Task, error)
}

// NewTask is what an admin supplies when assigning work.
type NewTask struct {
	Title       string
	Description string
	AssignedTo  generic.UserID
	Deadline    generic.TimePoint
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	AssignedTo generic.UserID
	Status     generic.TaskStatus
	Overdue    *bool
}

// Summary is one assignee's task list with counts as of a day.
type Summary struct {
	Total     int
	Completed int
	Overdue   int
	Pending   int
	Tasks     []generic.Task
}

// Tracker applies the task rules on top of a Store:
//   - tasks are assigned to staff, never to admins
//   - only the assignee completes a task, and only once
//   - only completed tasks are rated, on a 1-5 scale
type Tracker struct {
	store  Store
	loc    *time.Location
	logger *zap.Logger
}

func NewTracker(store Store, loc *time.Location, logger *zap.Logger) *Tracker {
	return &Tracker{store: store, loc: loc, logger: logger}
}

// Create assigns a new task. The deadline may not be before today.
func (t *Tracker) Create(ctx context.Context, creator generic.UserID, in NewTask, now time.Time) (*generic.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &generic.ValidationError{Field: "title", Value: in.Title, Err: generic.ErrInvalidInput}
	}
	today := generic.DateOf(now, t.loc)
	if in.Deadline.IsZero() || in.Deadline.Before(today) {
		return nil, &generic.ValidationError{Field: "deadline", Value: in.Deadline.String(), Err: generic.ErrInvalidInput}
	}

	assignee, err := t.store.GetStaff(ctx, in.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("load assignee: %w", err)
	}
	if assignee == nil || assignee.Role != generic.RoleStaff {
		return nil, &generic.ValidationError{Field: "assigned_to", Value: in.AssignedTo, Err: generic.ErrInvalidInput}
	}

	deadline := in.Deadline
	task := generic.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		CreatedBy:   creator,
		AssignedTo:  in.AssignedTo,
		Status:      generic.TaskTodo,
		Deadline:    &deadline,
		CreatedAt:   now,
	}
	if err := t.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	t.logger.Info("task assigned",
		zap.String("task_id", task.ID),
		zap.String("assigned_to", in.AssignedTo.String()))
	return &task, nil
}

// Complete marks the assignee's task done at now.
func (t *Tracker) Complete(ctx context.Context, userID generic.UserID, taskID string, now time.Time) (*generic.Task, error) {
	task, err := t.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil || task.AssignedTo != userID {
		return nil, generic.ErrTaskNotFound
	}
	if task.Status == generic.TaskCompleted {
		return nil, generic.ErrTaskAlreadyCompleted
	}

	task.Status = generic.TaskCompleted
	task.CompletedAt = &now
	if err := t.store.SaveTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return task, nil
}

// Rate sets the rating of a completed task. Re-rating replaces the value.
func (t *Tracker) Rate(ctx context.Context, taskID string, rating int) (*generic.Task, error) {
	if !generic.ValidRating(rating) {
		return nil, &generic.ValidationError{Field: "rating", Value: rating, Err: generic.ErrInvalidRating}
	}
	task, err := t.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, generic.ErrTaskNotFound
	}
	if task.Status != generic.TaskCompleted {
		return nil, generic.ErrTaskNotCompleted
	}

	task.Rating = &rating
	if err := t.store.SaveTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	t.logger.Info("task rated",
		zap.String("task_id", task.ID),
		zap.Int("rating", rating))
	return task, nil
}

// Mine summarizes the user's tasks as of now, ordered by deadline.
func (t *Tracker) Mine(ctx context.Context, userID generic.UserID, now time.Time) (Summary, error) {
	list, err := t.store.TasksFor(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("load tasks: %w", err)
	}
	return Summarize(list, generic.DateOf(now, t.loc)), nil
}

// List returns every task matching f, ordered by deadline.
func (t *Tracker) List(ctx context.Context, f Filter, now time.Time) ([]generic.Task, error) {
	all, err := t.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	today := generic.DateOf(now, t.loc)

	out := make([]generic.Task, 0, len(all))
	for _, task := range all {
		if f.AssignedTo != "" && task.AssignedTo != f.AssignedTo {
			continue
		}
		if f.Status != "" && task.Status != f.Status {
			continue
		}
		if f.Overdue != nil && task.IsOverdue(today) != *f.Overdue {
			continue
		}
		out = append(out, task)
	}
	byDeadline(out)
	return out, nil
}

// Summarize counts tasks as of today. An unfinished task is overdue once
// its deadline has passed and pending otherwise.
func Summarize(list []generic.Task, today generic.TimePoint) Summary {
	s := Summary{Total: len(list), Tasks: append([]generic.Task(nil), list...)}
	for _, task := range list {
		switch {
		case task.Status == generic.TaskCompleted:
			s.Completed++
		case task.IsOverdue(today):
			s.Overdue++
		default:
			s.Pending++
		}
	}
	byDeadline(s.Tasks)
	return s
}

// byDeadline sorts earliest deadline first; tasks without one go last.
func byDeadline(list []generic.Task) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Deadline, list[j].Deadline
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
