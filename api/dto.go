/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Timeline types
  (attendance.History, reports.Timeline) already carry JSON tags and are
  returned as-is; the types here cover request bodies and the aggregate
  views that combine several engine results.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request bodies carry go-playground/validator tags and are checked in
  Handler.decode. Month/year validation stays in generic.

SEE ALSO:
  - handlers.go: decode, writeJSON
*/
package api

import (
	"time"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/reports"
	"github.com/warp/workday-engine/roster"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CheckInRequest is the optional check-in body.
type CheckInRequest struct {
	Method string `json:"method" validate:"omitempty,oneof=IP QR"`
}

// ReportRequest is the body for submitting or editing a daily report.
type ReportRequest struct {
	reports.Content
}

// CreateTaskRequest assigns a task. Deadline is a YYYY-MM-DD date.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"notblank,min=3,max=100"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to" validate:"notblank"`
	Deadline    string `json:"deadline" validate:"required,datetime=2006-01-02"`
}

// RateTaskRequest rates a completed task.
type RateTaskRequest struct {
	Rating int `json:"rating" validate:"min=1,max=5"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"notblank"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AttendanceEventDTO is a stored session.
type AttendanceEventDTO struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	CheckInTime      time.Time  `json:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time"`
	TotalWorkMinutes *int       `json:"total_work_time_minutes"`
	Method           string     `json:"method"`
	IPAddress        string     `json:"ip_address,omitempty"`
}

// PerformanceDTO is a score rounded for display.
type PerformanceDTO struct {
	UserID            string    `json:"user_id"`
	Month             int       `json:"month"`
	Year              int       `json:"year"`
	Score             float64   `json:"score"`
	ReportConsistency float64   `json:"report_consistency"`
	TaskScore         float64   `json:"task_score"`
	AttendanceRate    float64   `json:"attendance_rate"`
	TrainingScore     float64   `json:"training_score"`
	AchievementCount  int       `json:"achievement_count"`
	ComputedAt        time.Time `json:"computed_at"`
	Cached            bool      `json:"cached"`
}

// DashboardDTO is the staff landing page.
type DashboardDTO struct {
	NextBirthday *roster.Match          `json:"next_birthday"`
	CurrentUser  CurrentUserDTO         `json:"current_user"`
	Attendance   attendance.TodayStatus `json:"attendance"`
}

type CurrentUserDTO struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	ReportStatus     reports.DayStatus `json:"report_status"`
	UncompletedTasks int               `json:"uncompleted_tasks"`
}

// AdminDashboardDTO summarizes today across all staff.
type AdminDashboardDTO struct {
	Date       string                    `json:"date"`
	TotalStaff int                       `json:"total_staff"`
	Attendance AttendanceSummaryDTO      `json:"attendance"`
	Reports    map[reports.DayStatus]int `json:"reports"`
	Tasks      TaskSummaryDTO            `json:"tasks"`
}

type AttendanceSummaryDTO struct {
	CheckedIn    int `json:"checked_in"`
	NotCheckedIn int `json:"not_checked_in"`
}

type TaskSummaryDTO struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// TaskDTO is an assigned task.
type TaskDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedBy   string     `json:"created_by,omitempty"`
	AssignedTo  string     `json:"assigned_to"`
	Status      string     `json:"status"`
	Rating      *int       `json:"rating"`
	Deadline    *string    `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// MyTasksDTO is the assignee's task list with counts.
type MyTasksDTO struct {
	Total     int       `json:"total_tasks"`
	Completed int       `json:"completed_tasks"`
	Overdue   int       `json:"overdue_tasks"`
	Pending   int       `json:"pending_tasks"`
	Tasks     []TaskDTO `json:"tasks"`
}

// StaffDTO is a staff identity record.
type StaffDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// StaffProfileDTO is the admin view of one staff member's current month.
type StaffProfileDTO struct {
	Staff          StaffDTO         `json:"staff"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	TotalWorkHours float64          `json:"total_work_hours"`
	Reports        reports.Timeline `json:"reports"`
	Performance    PerformanceDTO   `json:"performance"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAttendanceEventDTO(ev attendance.Event) AttendanceEventDTO {
	dto := AttendanceEventDTO{
		ID:           ev.ID,
		UserID:       ev.UserID.String(),
		CheckInTime:  ev.CheckInAt,
		CheckOutTime: ev.CheckOutAt,
		Method:       string(ev.Method),
		IPAddress:    ev.IPAddress,
	}
	if !ev.IsOpen() {
		minutes := ev.WorkMinutes()
		dto.TotalWorkMinutes = &minutes
	}
	return dto
}

func toPerformanceDTO(res performance.Result) PerformanceDTO {
	s := res.Score
	return PerformanceDTO{
		UserID:            s.UserID.String(),
		Month:             s.Month,
		Year:              s.Year,
		Score:             round2(s.Score),
		ReportConsistency: round2(s.ReportConsistency),
		TaskScore:         round2(s.TaskScore),
		AttendanceRate:    round2(s.AttendanceRate),
		TrainingScore:     round2(s.TrainingScore),
		AchievementCount:  s.AchievementCount,
		ComputedAt:        s.ComputedAt,
		Cached:            res.Cached,
	}
}

func toTaskDTO(t generic.Task) TaskDTO {
	dto := TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedBy:   t.CreatedBy.String(),
		AssignedTo:  t.AssignedTo.String(),
		Status:      string(t.Status),
		Rating:      t.Rating,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
	if t.Deadline != nil {
		d := t.Deadline.String()
		dto.Deadline = &d
	}
	return dto
}

func toTaskDTOs(list []generic.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(list))
	for _, t := range list {
		out = append(out, toTaskDTO(t))
	}
	return out
}

func toStaffDTO(s generic.Staff) StaffDTO {
	dto := StaffDTO{
		ID:    s.ID.String(),
		Name:  s.DisplayName(),
		Email: s.Email,
		Role:  string(s.Role),
	}
	if s.DateOfBirth != nil {
		dob := s.DateOfBirth.String()
		dto.DateOfBirth = &dob
	}
	if !s.CreatedAt.IsZero() {
		dto.CreatedAt = s.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// AttendanceActionResponse is returned by check-in and check-out.
type AttendanceActionResponse struct {
	Message    string             `json:"message"`
	Attendance AttendanceEventDTO `json:"attendance"`
}
