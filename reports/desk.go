package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// STORE
// =============================================================================

// Store persists daily reports. Implementations must enforce at most one
// report per (user, day) and report a violation as generic.ErrDuplicateDay.
type Store interface {
	InsertReport(ctx context.Context, ev Event) error
	UpdateReport(ctx context.Context, id string, content Content, updatedAt time.Time) error

	// GetReport returns the report or nil.
	GetReport(ctx context.Context, id string) (*Event, error)

	// ReportOn returns the user's report for one day, or nil.
	ReportOn(ctx context.Context, userID generic.UserID, day generic.TimePoint) (*Event, error)

	// FirstReportDate returns the day of the user's earliest report, or nil.
	FirstReportDate(ctx context.Context, userID generic.UserID) (*generic.TimePoint, error)

	// ReportRange returns reports dated in [from, to], ordered by date.
	ReportRange(ctx context.Context, userID generic.UserID, from, to generic.TimePoint) ([]Event, error)

	// ListReports returns all the user's reports, newest first.
	ListReports(ctx context.Context, userID generic.UserID) ([]Event, error)

	// ReportersOn returns the ids of users who reported on day.
	ReportersOn(ctx context.Context, day generic.TimePoint) (map[generic.UserID]bool, error)
}

// =============================================================================
// DESK - Submission workflow and timeline views
// =============================================================================

// Desk applies the report rules on top of a Store:
//   - one report per user per civil day
//   - only the author may edit, and only within EditWindow
type Desk struct {
	store  Store
	loc    *time.Location
	logger *zap.Logger
}

func NewDesk(store Store, loc *time.Location, logger *zap.Logger) *Desk {
	return &Desk{store: store, loc: loc, logger: logger}
}

// Submit files the report for the day of now.
func (d *Desk) Submit(ctx context.Context, userID generic.UserID, content Content, now time.Time) (*Event, error) {
	if content.Blank() {
		return nil, &generic.ValidationError{Field: "content", Value: "blank section", Err: generic.ErrInvalidInput}
	}
	today := generic.DateOf(now, d.loc)

	existing, err := d.store.ReportOn(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("load today's report: %w", err)
	}
	if existing != nil {
		return nil, generic.ErrReportExists
	}

	ev := Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      today,
		Content:   content,
		CreatedAt: now,
	}
	if err := d.store.InsertReport(ctx, ev); err != nil {
		if generic.IsConflict(err) {
			return nil, generic.ErrReportExists
		}
		return nil, fmt.Errorf("insert report: %w", err)
	}

	d.logger.Info("report submitted",
		zap.String("user_id", userID.String()),
		zap.String("date", today.String()))
	return &ev, nil
}

// Update replaces the content of the author's report within the edit window.
func (d *Desk) Update(ctx context.Context, userID generic.UserID, reportID string, content Content, now time.Time) (*Event, error) {
	if content.Blank() {
		return nil, &generic.ValidationError{Field: "content", Value: "blank section", Err: generic.ErrInvalidInput}
	}
	ev, err := d.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if ev == nil || ev.UserID != userID {
		return nil, generic.ErrReportNotFound
	}

	if now.Sub(ev.CreatedAt) > EditWindow {
		return nil, &generic.EditWindowError{ReportID: ev.ID, CreatedAt: ev.CreatedAt, Window: EditWindow}
	}

	if err := d.store.UpdateReport(ctx, ev.ID, content, now); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	ev.Content = content
	ev.UpdatedAt = &now
	return ev, nil
}

// List returns the user's reports, newest first.
func (d *Desk) List(ctx context.Context, userID generic.UserID) ([]Event, error) {
	return d.store.ListReports(ctx, userID)
}

// Today returns submitted or pending for the day of now.
func (d *Desk) Today(ctx context.Context, userID generic.UserID, now time.Time) (DayStatus, error) {
	today := generic.DateOf(now, d.loc)
	ev, err := d.store.ReportOn(ctx, userID, today)
	if err != nil {
		return "", err
	}
	return Classify(today, today, ev != nil), nil
}

// Timeline fetches the month's reports and reconciles them as of now.
func (d *Desk) Timeline(ctx context.Context, userID generic.UserID, month generic.MonthRef, now time.Time) (Timeline, error) {
	loc := d.loc
	first, err := d.store.FirstReportDate(ctx, userID)
	if err != nil {
		return Timeline{}, fmt.Errorf("load first report: %w", err)
	}

	var events []Event
	if period, ok := Range(month, first, now, loc); ok {
		events, err = d.store.ReportRange(ctx, userID, period.Start, period.End)
		if err != nil {
			return Timeline{}, fmt.Errorf("load report range: %w", err)
		}
	}

	return Reconcile(Input{
		UserID:      userID,
		Month:       month,
		Now:         now,
		Location:    loc,
		FirstReport: first,
		Events:      events,
	}), nil
}

// Board classifies every staff member for one day as of now.
func (d *Desk) Board(ctx context.Context, date generic.TimePoint, staff []generic.Staff, filter DayStatus, now time.Time) (Board, error) {
	submitted, err := d.store.ReportersOn(ctx, date)
	if err != nil {
		return Board{}, fmt.Errorf("load reporters: %w", err)
	}
	today := generic.DateOf(now, d.loc)
	return BuildBoard(date, today, staff, submitted, filter), nil
}
