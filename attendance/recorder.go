package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
)

// =============================================================================
// STORE - What the recorder and the timeline views need from persistence
// =============================================================================

// Store persists attendance sessions. Implementations must enforce at most
// one session per (user, check-in day) and report a violation as
// generic.ErrDuplicateDay.
type Store interface {
	// InsertAttendance stores a new open session keyed by its civil day.
	InsertAttendance(ctx context.Context, ev Event, day generic.TimePoint) error

	// CloseAttendance sets the check-out time of an open session.
	CloseAttendance(ctx context.Context, id string, checkOutAt time.Time) error

	// AttendanceOn returns the user's session for one day, or nil.
	AttendanceOn(ctx context.Context, userID generic.UserID, day generic.TimePoint) (*Event, error)

	// AttendanceRange returns sessions whose check-in day is in [from, to], ordered by check-in.
	AttendanceRange(ctx context.Context, userID generic.UserID, from, to generic.TimePoint) ([]Event, error)
}

// =============================================================================
// RECORDER - Check-in / check-out workflow
// =============================================================================

// Recorder applies the session rules on top of a Store:
//   - one check-in per civil day
//   - check-out only closes today's open session
//   - optional office IP allow-list
type Recorder struct {
	store      Store
	loc        *time.Location
	allowedIPs map[string]struct{}
	logger     *zap.Logger
}

// NewRecorder creates a recorder. An empty allow-list accepts any address.
func NewRecorder(store Store, loc *time.Location, allowedIPs []string, logger *zap.Logger) *Recorder {
	var allow map[string]struct{}
	for _, ip := range allowedIPs {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		if allow == nil {
			allow = make(map[string]struct{})
		}
		allow[ip] = struct{}{}
	}
	return &Recorder{store: store, loc: loc, allowedIPs: allow, logger: logger}
}

// CheckIn opens the session for the day of now.
func (r *Recorder) CheckIn(ctx context.Context, userID generic.UserID, method Method, ip string, now time.Time) (*Event, error) {
	today := generic.DateOf(now, r.loc)

	existing, err := r.store.AttendanceOn(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("load today's attendance: %w", err)
	}
	if existing != nil {
		if existing.IsOpen() {
			return nil, generic.ErrAlreadyCheckedIn
		}
		return nil, generic.ErrAlreadyCompleted
	}

	if r.allowedIPs != nil {
		if _, ok := r.allowedIPs[ip]; !ok {
			r.logger.Warn("check-in rejected by ip allow-list",
				zap.String("user_id", userID.String()), zap.String("ip", ip))
			return nil, &generic.IPNotAllowedError{IP: ip}
		}
	}

	if method == "" {
		method = MethodIP
	}
	ev := Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		CheckInAt: now,
		Method:    method,
		IPAddress: ip,
	}
	if err := r.store.InsertAttendance(ctx, ev, today); err != nil {
		// A concurrent check-in for the same day won the uniqueness race.
		if generic.IsConflict(err) {
			return nil, generic.ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("insert attendance: %w", err)
	}

	r.logger.Info("checked in",
		zap.String("user_id", userID.String()),
		zap.Time("at", now),
		zap.String("method", string(method)))
	return &ev, nil
}

// CheckOut closes the open session of the day of now.
func (r *Recorder) CheckOut(ctx context.Context, userID generic.UserID, now time.Time) (*Event, error) {
	today := generic.DateOf(now, r.loc)

	existing, err := r.store.AttendanceOn(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("load today's attendance: %w", err)
	}
	if existing == nil || !existing.IsOpen() {
		return nil, generic.ErrNoOpenSession
	}

	if err := r.store.CloseAttendance(ctx, existing.ID, now); err != nil {
		return nil, fmt.Errorf("close attendance: %w", err)
	}
	existing.CheckOutAt = &now

	r.logger.Info("checked out",
		zap.String("user_id", userID.String()),
		zap.Time("at", now),
		zap.Int("work_minutes", existing.WorkMinutes()))
	return existing, nil
}

// Today returns the session state on the day of now.
func (r *Recorder) Today(ctx context.Context, userID generic.UserID, now time.Time) (TodayStatus, error) {
	today := generic.DateOf(now, r.loc)
	ev, err := r.store.AttendanceOn(ctx, userID, today)
	if err != nil {
		return TodayStatus{}, err
	}
	var events []Event
	if ev != nil {
		events = append(events, *ev)
	}
	return StatusToday(events, now, r.loc), nil
}

// History fetches the month's sessions and reconciles them as of now.
func (r *Recorder) History(ctx context.Context, userID generic.UserID, month generic.MonthRef, now time.Time) (History, error) {
	loc := r.loc
	period := Range(month, now, loc)

	var events []Event
	if !period.IsEmpty() {
		var err error
		events, err = r.store.AttendanceRange(ctx, userID, period.Start, period.End)
		if err != nil {
			return History{}, fmt.Errorf("load attendance range: %w", err)
		}
	}

	return Reconcile(Input{
		UserID:   userID,
		Month:    month,
		Now:      now,
		Location: loc,
		Events:   events,
	}), nil
}
