/*
Package performance computes the monthly performance score.

PURPOSE:
  Combines four independently computed sub-metrics into one weighted score
  in [0, 100] for a user and month:

    report_consistency  35%   reports filed / days in month
    task_score          30%   average rating of tasks completed in month * 20
    attendance_rate     20%   days with a check-in / days in month
    training_score      10%   provider (fixed 100 until trainings exist)
    achievements         5%   per achievement, capped at 20 (provider returns 0)

  Every sub-metric is clamped to [0, 100] and the total is capped at 100.

CACHING:
  The first request for (user, month, year) computes and stores the score;
  later requests return the stored row even if the underlying data changed.
  See service.go.

SEE ALSO:
  - service.go: Fetch, compute, insert-if-absent
  - store/sqlite/sqlite.go: performance_scores table
*/
package performance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// WEIGHTS
// =============================================================================

var (
	weightReports     = decimal.RequireFromString("0.35")
	weightTasks       = decimal.RequireFromString("0.30")
	weightAttendance  = decimal.RequireFromString("0.20")
	weightTraining    = decimal.RequireFromString("0.10")
	weightAchievement = decimal.RequireFromString("0.05")

	ratingScale = decimal.NewFromInt(20)
	maxScore    = decimal.NewFromInt(100)
)

// MaxAchievements caps how many achievements count toward the score.
const MaxAchievements = 20

// DefaultTrainingScore is used until a training subsystem exists.
const DefaultTrainingScore = 100.0

// =============================================================================
// TYPES
// =============================================================================

// Inputs are the raw counts one score is computed from.
type Inputs struct {
	DaysInMonth      int
	SubmittedReports int
	Ratings          []int // ratings (1-5) of tasks completed in the month
	CheckinDays      int
	TrainingScore    float64
	Achievements     int
}

// Score is the stored monthly score with its breakdown.
type Score struct {
	ID                string         `json:"id"`
	UserID            generic.UserID `json:"user_id"`
	Month             int            `json:"month"`
	Year              int            `json:"year"`
	Score             float64        `json:"score"`
	ReportConsistency float64        `json:"report_consistency"`
	TaskScore         float64        `json:"task_score"`
	AttendanceRate    float64        `json:"attendance_rate"`
	TrainingScore     float64        `json:"training_score"`
	AchievementCount  int            `json:"achievement_count"`
	ComputedAt        time.Time      `json:"computed_at"`
}

// MonthRef returns the month the score belongs to.
func (s Score) MonthRef() generic.MonthRef {
	return generic.MonthRef{Year: s.Year, Month: time.Month(s.Month)}
}

// =============================================================================
// SUB-METRICS
// =============================================================================

// ReportConsistency is reports filed as a share of the month's days.
func ReportConsistency(submitted, daysInMonth int) decimal.Decimal {
	return generic.Percent(submitted, daysInMonth)
}

// TaskScore maps the average 1-5 rating to 20-100. No ratings scores 0.
func TaskScore(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r)))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(ratings))))
	return generic.Clamp100(avg.Mul(ratingScale))
}

// AttendanceRate is days with a check-in as a share of the month's days.
func AttendanceRate(checkinDays, daysInMonth int) decimal.Decimal {
	return generic.Percent(checkinDays, daysInMonth)
}

// Combine applies the weights and caps the total at 100.
func Combine(reports, tasks, attendance, training decimal.Decimal, achievements int) decimal.Decimal {
	if achievements > MaxAchievements {
		achievements = MaxAchievements
	}
	if achievements < 0 {
		achievements = 0
	}
	total := reports.Mul(weightReports).
		Add(tasks.Mul(weightTasks)).
		Add(attendance.Mul(weightAttendance)).
		Add(generic.Clamp100(training).Mul(weightTraining)).
		Add(decimal.NewFromInt(int64(achievements)).Mul(weightAchievement))
	return decimal.Min(total, maxScore)
}

// Compute scores one user-month from its inputs.
func Compute(userID generic.UserID, month generic.MonthRef, in Inputs, at time.Time) Score {
	rc := ReportConsistency(in.SubmittedReports, in.DaysInMonth)
	ts := TaskScore(in.Ratings)
	ar := AttendanceRate(in.CheckinDays, in.DaysInMonth)
	tr := generic.Clamp100(decimal.NewFromFloat(in.TrainingScore))
	total := Combine(rc, ts, ar, tr, in.Achievements)

	return Score{
		UserID:            userID,
		Month:             int(month.Month),
		Year:              month.Year,
		Score:             toFloat(total),
		ReportConsistency: toFloat(rc),
		TaskScore:         toFloat(ts),
		AttendanceRate:    toFloat(ar),
		TrainingScore:     toFloat(tr),
		AchievementCount:  in.Achievements,
		ComputedAt:        at,
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
