package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Source answers the counting queries the sub-metrics need, scoped to one
// user and one day range.
type Source interface {
	ReportCount(ctx context.Context, userID generic.UserID, period generic.Period) (int, error)
	CheckinDayCount(ctx context.Context, userID generic.UserID, period generic.Period) (int, error)
	// CompletedTaskRatings returns ratings of tasks completed in period; unrated tasks are skipped.
	CompletedTaskRatings(ctx context.Context, userID generic.UserID, period generic.Period) ([]int, error)
}

// TrainingProvider supplies the training sub-metric.
type TrainingProvider interface {
	TrainingScore(ctx context.Context, userID generic.UserID, month generic.MonthRef) (float64, error)
}

// AchievementProvider supplies the achievement count.
type AchievementProvider interface {
	AchievementCount(ctx context.Context, userID generic.UserID, month generic.MonthRef) (int, error)
}

// ScoreStore caches computed scores, unique per (user, month, year).
type ScoreStore interface {
	// GetScore returns the stored score or nil.
	GetScore(ctx context.Context, userID generic.UserID, month generic.MonthRef) (*Score, error)

	// InsertScoreIfAbsent stores s unless a row for the same period exists,
	// and returns whichever row is stored afterwards.
	InsertScoreIfAbsent(ctx context.Context, s Score) (Score, error)
}

// FixedTraining returns the same training score for everyone.
type FixedTraining float64

func (f FixedTraining) TrainingScore(context.Context, generic.UserID, generic.MonthRef) (float64, error) {
	return float64(f), nil
}

// NoAchievements reports zero achievements until an achievements module exists.
type NoAchievements struct{}

func (NoAchievements) AchievementCount(context.Context, generic.UserID, generic.MonthRef) (int, error) {
	return 0, nil
}

// =============================================================================
// SERVICE
// =============================================================================

// Service computes scores on first request and serves the stored snapshot
// afterwards.
type Service struct {
	source       Source
	scores       ScoreStore
	training     TrainingProvider
	achievements AchievementProvider
	logger       *zap.Logger
}

func NewService(source Source, scores ScoreStore, logger *zap.Logger) *Service {
	return &Service{
		source:       source,
		scores:       scores,
		training:     FixedTraining(DefaultTrainingScore),
		achievements: NoAchievements{},
		logger:       logger,
	}
}

// WithProviders swaps the training and achievement providers. Nil keeps the default.
func (s *Service) WithProviders(training TrainingProvider, achievements AchievementProvider) *Service {
	if training != nil {
		s.training = training
	}
	if achievements != nil {
		s.achievements = achievements
	}
	return s
}

// Result is a score plus whether it came from the cache.
type Result struct {
	Score  Score
	Cached bool
}

// Get returns the stored score for the month, computing and storing it on
// first request.
func (s *Service) Get(ctx context.Context, userID generic.UserID, month generic.MonthRef, now time.Time) (Result, error) {
	stored, err := s.scores.GetScore(ctx, userID, month)
	if err != nil {
		return Result{}, fmt.Errorf("load cached score: %w", err)
	}
	if stored != nil {
		return Result{Score: *stored, Cached: true}, nil
	}

	score, err := s.Calculate(ctx, userID, month, now)
	if err != nil {
		return Result{}, err
	}
	score.ID = uuid.NewString()

	kept, err := s.scores.InsertScoreIfAbsent(ctx, score)
	if err != nil {
		return Result{}, fmt.Errorf("store score: %w", err)
	}

	s.logger.Info("performance score computed",
		zap.String("user_id", userID.String()),
		zap.String("month", month.String()),
		zap.Float64("score", kept.Score),
		zap.Bool("race_lost", kept.ID != score.ID))
	return Result{Score: kept, Cached: kept.ID != score.ID}, nil
}

// Calculate computes a fresh score without touching the cache.
func (s *Service) Calculate(ctx context.Context, userID generic.UserID, month generic.MonthRef, now time.Time) (Score, error) {
	period := month.Period()

	reports, err := s.source.ReportCount(ctx, userID, period)
	if err != nil {
		return Score{}, fmt.Errorf("count reports: %w", err)
	}
	checkins, err := s.source.CheckinDayCount(ctx, userID, period)
	if err != nil {
		return Score{}, fmt.Errorf("count check-in days: %w", err)
	}
	ratings, err := s.source.CompletedTaskRatings(ctx, userID, period)
	if err != nil {
		return Score{}, fmt.Errorf("load task ratings: %w", err)
	}
	training, err := s.training.TrainingScore(ctx, userID, month)
	if err != nil {
		return Score{}, fmt.Errorf("training score: %w", err)
	}
	achievements, err := s.achievements.AchievementCount(ctx, userID, month)
	if err != nil {
		return Score{}, fmt.Errorf("achievement count: %w", err)
	}

	return Compute(userID, month, Inputs{
		DaysInMonth:      month.Days(),
		SubmittedReports: reports,
		Ratings:          ratings,
		CheckinDays:      checkins,
		TrainingScore:    training,
		Achievements:     achievements,
	}, now), nil
}
