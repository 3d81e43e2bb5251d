/*
Package sqlite provides a SQLite-backed implementation of the engine's storage interfaces.

PURPOSE:
  Implements every persistence interface (attendance.Store, reports.Store,
  performance.Source, performance.ScoreStore, tasks.Store) plus the staff
  lookups the dashboards need. In production, the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  attendance.Store:       Check-in sessions
  reports.Store:          Daily reports
  performance.Source:     Counting queries behind the sub-metrics
  performance.ScoreStore: Insert-if-absent score cache
  tasks.Store:            Task assignment, completion and rating

KEY TABLES:
  staff:              Identity, role and date of birth
  attendance_logs:    One session per (user, day)
  daily_reports:      One report per (user, day)
  tasks:              Assigned work with completion day and rating
  performance_scores: One frozen score per (user, month, year)

UNIQUENESS:
  The per-day invariants live in the schema, not in the services:
  - idx_attendance_user_day: one check-in per civil day
  - idx_reports_user_day:    one report per civil day
  - UNIQUE(user_id, month, year) on performance_scores
  Services check first for a friendly error; the index settles races.

DAY COLUMNS:
  Instants are stored as RFC3339Nano in UTC. The civil day in the reference
  zone is computed once, on write, and stored next to the instant so range
  queries never need zone math in SQL.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/workday.db", sqlite.WithLocation(loc))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - store/memory: In-memory implementation for tests
  - store/redis: Optional cache tier in front of the score table
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/reports"
	"github.com/warp/workday-engine/tasks"
)

// Fixed-width so instants sort chronologically as text.
const instantLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	loc *time.Location
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the reference zone used to derive day columns. Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, loc: time.UTC}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'staff',
		date_of_birth TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_staff_role
		ON staff(role);

	-- One session per user per civil day of check-in
	CREATE TABLE IF NOT EXISTS attendance_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		day TEXT NOT NULL,
		check_in_at TEXT NOT NULL,
		check_out_at TEXT,
		method TEXT NOT NULL DEFAULT 'IP',
		ip_address TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_user_day
		ON attendance_logs(user_id, day);
	CREATE INDEX IF NOT EXISTS idx_attendance_day
		ON attendance_logs(day);

	-- One report per user per civil day
	CREATE TABLE IF NOT EXISTS daily_reports (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		day TEXT NOT NULL,
		achievements TEXT NOT NULL,
		challenges TEXT NOT NULL,
		completed_tasks TEXT NOT NULL,
		plans_for_tomorrow TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_user_day
		ON daily_reports(user_id, day);
	CREATE INDEX IF NOT EXISTS idx_reports_day
		ON daily_reports(day);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		assigned_to TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'todo',
		rating INTEGER,
		deadline TEXT,
		created_at TEXT NOT NULL,
		completed_at TEXT,
		completed_day TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_assignee_completed
		ON tasks(assigned_to, status, completed_day);

	-- Frozen monthly scores; first write wins
	CREATE TABLE IF NOT EXISTS performance_scores (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		score REAL NOT NULL,
		report_consistency REAL NOT NULL,
		task_score REAL NOT NULL,
		attendance_rate REAL NOT NULL,
		training_score REAL NOT NULL,
		achievement_count INTEGER NOT NULL DEFAULT 0,
		computed_at TEXT NOT NULL,
		UNIQUE(user_id, month, year)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STAFF
// =============================================================================

// SaveStaff upserts a staff member.
func (s *Store) SaveStaff(ctx context.Context, st generic.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO staff (id, name, email, role, date_of_birth, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			date_of_birth = excluded.date_of_birth
	`

	createdAt := st.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	role := st.Role
	if role == "" {
		role = generic.RoleStaff
	}
	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Email, role,
		nullDay(st.DateOfBirth),
		formatInstant(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save staff: %w", err)
	}
	return nil
}

// GetStaff retrieves a staff member by ID, or nil.
func (s *Store) GetStaff(ctx context.Context, id generic.UserID) (*generic.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, role, date_of_birth, created_at FROM staff WHERE id = ?", id)
	st, err := scanStaff(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStaff returns staff-role users ordered by creation time.
func (s *Store) ListStaff(ctx context.Context) ([]generic.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role, date_of_birth, created_at
		FROM staff
		WHERE role = ?
		ORDER BY created_at ASC, id ASC
	`, generic.RoleStaff)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var out []generic.Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStaff(row scanner) (generic.Staff, error) {
	var (
		st        generic.Staff
		dob       sql.NullString
		createdAt string
	)
	if err := row.Scan(&st.ID, &st.Name, &st.Email, &st.Role, &dob, &createdAt); err != nil {
		return st, err
	}
	st.DateOfBirth = parseNullDay(dob)
	st.CreatedAt = parseInstant(createdAt)
	return st, nil
}

// =============================================================================
// ATTENDANCE (attendance.Store)
// =============================================================================

const attendanceColumns = `id, user_id, check_in_at, check_out_at, method, ip_address`

// InsertAttendance stores a new open session.
func (s *Store) InsertAttendance(ctx context.Context, ev attendance.Event, day generic.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_logs (id, user_id, day, check_in_at, check_out_at, method, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID, ev.UserID, day.String(),
		formatInstant(ev.CheckInAt), nullInstant(ev.CheckOutAt),
		ev.Method, nullString(ev.IPAddress),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateDay
		}
		return fmt.Errorf("failed to insert attendance: %w", err)
	}
	return nil
}

// CloseAttendance sets the check-out of an open session.
func (s *Store) CloseAttendance(ctx context.Context, id string, checkOutAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE attendance_logs SET check_out_at = ? WHERE id = ? AND check_out_at IS NULL",
		formatInstant(checkOutAt), id)
	if err != nil {
		return fmt.Errorf("failed to close attendance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrNoOpenSession
	}
	return nil
}

// AttendanceOn returns the user's session for one day, or nil.
func (s *Store) AttendanceOn(ctx context.Context, userID generic.UserID, day generic.TimePoint) (*attendance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance_logs WHERE user_id = ? AND day = ?",
		userID, day.String())
	ev, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// AttendanceRange returns sessions whose day is in [from, to], ordered by check-in.
func (s *Store) AttendanceRange(ctx context.Context, userID generic.UserID, from, to generic.TimePoint) ([]attendance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_logs
		WHERE user_id = ? AND day >= ? AND day <= ?
		ORDER BY check_in_at ASC
	`, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []attendance.Event
	for rows.Next() {
		ev, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// AttendeesOn returns the ids of users who checked in on day.
func (s *Store) AttendeesOn(ctx context.Context, day generic.TimePoint) (map[generic.UserID]bool, error) {
	return s.userSet(ctx, "SELECT DISTINCT user_id FROM attendance_logs WHERE day = ?", day.String())
}

func scanAttendance(row scanner) (attendance.Event, error) {
	var (
		ev        attendance.Event
		checkIn   string
		checkOut  sql.NullString
		ipAddress sql.NullString
	)
	if err := row.Scan(&ev.ID, &ev.UserID, &checkIn, &checkOut, &ev.Method, &ipAddress); err != nil {
		return ev, err
	}
	ev.CheckInAt = parseInstant(checkIn)
	ev.CheckOutAt = parseNullInstant(checkOut)
	ev.IPAddress = ipAddress.String
	return ev, nil
}

// =============================================================================
// REPORTS (reports.Store)
// =============================================================================

const reportColumns = `id, user_id, day, achievements, challenges, completed_tasks, plans_for_tomorrow, created_at, updated_at`

// InsertReport stores a new report.
func (s *Store) InsertReport(ctx context.Context, ev reports.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID, ev.UserID, ev.Date.String(),
		ev.Achievements, ev.Challenges, ev.CompletedTasks, ev.PlansForTomorrow,
		formatInstant(ev.CreatedAt), nullInstant(ev.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateDay
		}
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// UpdateReport replaces the report text.
func (s *Store) UpdateReport(ctx context.Context, id string, c reports.Content, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_reports SET
			achievements = ?, challenges = ?, completed_tasks = ?, plans_for_tomorrow = ?,
			updated_at = ?
		WHERE id = ?
	`, c.Achievements, c.Challenges, c.CompletedTasks, c.PlansForTomorrow, formatInstant(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrReportNotFound
	}
	return nil
}

// GetReport returns a report by id, or nil.
func (s *Store) GetReport(ctx context.Context, id string) (*reports.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, err := scanReport(s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM daily_reports WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ReportOn returns the user's report for one day, or nil.
func (s *Store) ReportOn(ctx context.Context, userID generic.UserID, day generic.TimePoint) (*reports.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, err := scanReport(s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM daily_reports WHERE user_id = ? AND day = ?",
		userID, day.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// FirstReportDate returns the user's earliest report day, or nil.
func (s *Store) FirstReportDate(ctx context.Context, userID generic.UserID) (*generic.TimePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MIN(day) FROM daily_reports WHERE user_id = ?", userID,
	).Scan(&first)
	if err != nil {
		return nil, fmt.Errorf("failed to query first report: %w", err)
	}
	return parseNullDay(first), nil
}

// ReportRange returns reports dated in [from, to], ordered by date.
func (s *Store) ReportRange(ctx context.Context, userID generic.UserID, from, to generic.TimePoint) ([]reports.Event, error) {
	return s.queryReports(ctx, `
		SELECT `+reportColumns+`
		FROM daily_reports
		WHERE user_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`, userID, from.String(), to.String())
}

// ListReports returns all the user's reports, newest first.
func (s *Store) ListReports(ctx context.Context, userID generic.UserID) ([]reports.Event, error) {
	out, err := s.queryReports(ctx, `
		SELECT `+reportColumns+`
		FROM daily_reports
		WHERE user_id = ?
		ORDER BY day DESC
	`, userID)
	if out == nil && err == nil {
		out = []reports.Event{}
	}
	return out, err
}

// ReportersOn returns the ids of users who reported on day.
func (s *Store) ReportersOn(ctx context.Context, day generic.TimePoint) (map[generic.UserID]bool, error) {
	return s.userSet(ctx, "SELECT DISTINCT user_id FROM daily_reports WHERE day = ?", day.String())
}

func (s *Store) queryReports(ctx context.Context, query string, args ...any) ([]reports.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []reports.Event
	for rows.Next() {
		ev, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanReport(row scanner) (reports.Event, error) {
	var (
		ev        reports.Event
		day       string
		createdAt string
		updatedAt sql.NullString
	)
	err := row.Scan(&ev.ID, &ev.UserID, &day,
		&ev.Achievements, &ev.Challenges, &ev.CompletedTasks, &ev.PlansForTomorrow,
		&createdAt, &updatedAt)
	if err != nil {
		return ev, err
	}
	ev.Date, _ = generic.ParseDate(day)
	ev.CreatedAt = parseInstant(createdAt)
	ev.UpdatedAt = parseNullInstant(updatedAt)
	return ev, nil
}

// =============================================================================
// TASKS
// =============================================================================

const taskColumns = `id, title, description, created_by, assigned_to, status, rating, deadline, created_at, completed_at`

// SaveTask upserts a task. The completion day is derived in the store's zone.
func (s *Store) SaveTask(ctx context.Context, t generic.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completedDay sql.NullString
	if t.CompletedAt != nil {
		completedDay = sql.NullString{String: generic.DateOf(*t.CompletedAt, s.loc).String(), Valid: true}
	}
	var rating sql.NullInt64
	if t.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*t.Rating), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`, completed_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			assigned_to = excluded.assigned_to,
			status = excluded.status,
			rating = excluded.rating,
			deadline = excluded.deadline,
			completed_at = excluded.completed_at,
			completed_day = excluded.completed_day
	`,
		t.ID, t.Title, t.Description, t.CreatedBy, t.AssignedTo, t.Status, rating, nullDay(t.Deadline),
		formatInstant(t.CreatedAt), nullInstant(t.CompletedAt), completedDay,
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// GetTask returns the task or nil.
func (s *Store) GetTask(ctx context.Context, id string) (*generic.Task, error) {
	list, err := s.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

// TasksFor returns the user's tasks ordered by creation time.
func (s *Store) TasksFor(ctx context.Context, userID generic.UserID) ([]generic.Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE assigned_to = ? ORDER BY created_at ASC", userID)
}

// ListTasks returns every task ordered by creation time.
func (s *Store) ListTasks(ctx context.Context) ([]generic.Task, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY created_at ASC")
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]generic.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var out []generic.Task
	for rows.Next() {
		var (
			t           generic.Task
			rating      sql.NullInt64
			deadline    sql.NullString
			createdAt   string
			completedAt sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.CreatedBy, &t.AssignedTo, &t.Status,
			&rating, &deadline, &createdAt, &completedAt); err != nil {
			return nil, err
		}
		if rating.Valid {
			r := int(rating.Int64)
			t.Rating = &r
		}
		t.Deadline = parseNullDay(deadline)
		t.CreatedAt = parseInstant(createdAt)
		t.CompletedAt = parseNullInstant(completedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// PERFORMANCE SOURCE (performance.Source)
// =============================================================================

// ReportCount counts the user's reports dated in period.
func (s *Store) ReportCount(ctx context.Context, userID generic.UserID, period generic.Period) (int, error) {
	return s.count(ctx,
		"SELECT COUNT(*) FROM daily_reports WHERE user_id = ? AND day >= ? AND day <= ?",
		userID, period.Start.String(), period.End.String())
}

// CheckinDayCount counts distinct check-in days in period.
func (s *Store) CheckinDayCount(ctx context.Context, userID generic.UserID, period generic.Period) (int, error) {
	return s.count(ctx,
		"SELECT COUNT(DISTINCT day) FROM attendance_logs WHERE user_id = ? AND day >= ? AND day <= ?",
		userID, period.Start.String(), period.End.String())
}

// CompletedTaskRatings returns ratings of tasks completed in period.
func (s *Store) CompletedTaskRatings(ctx context.Context, userID generic.UserID, period generic.Period) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT rating FROM tasks
		WHERE assigned_to = ? AND status = ? AND rating IS NOT NULL
		  AND completed_day >= ? AND completed_day <= ?
	`, userID, generic.TaskCompleted, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query task ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// =============================================================================
// SCORE CACHE (performance.ScoreStore)
// =============================================================================

const scoreColumns = `id, user_id, month, year, score, report_consistency, task_score,
	attendance_rate, training_score, achievement_count, computed_at`

// GetScore returns the stored score, or nil.
func (s *Store) GetScore(ctx context.Context, userID generic.UserID, month generic.MonthRef) (*performance.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getScore(ctx, userID, month)
}

func (s *Store) getScore(ctx context.Context, userID generic.UserID, month generic.MonthRef) (*performance.Score, error) {
	var (
		sc         performance.Score
		computedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT "+scoreColumns+" FROM performance_scores WHERE user_id = ? AND month = ? AND year = ?",
		userID, int(month.Month), month.Year,
	).Scan(&sc.ID, &sc.UserID, &sc.Month, &sc.Year, &sc.Score, &sc.ReportConsistency, &sc.TaskScore,
		&sc.AttendanceRate, &sc.TrainingScore, &sc.AchievementCount, &computedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query score: %w", err)
	}
	sc.ComputedAt = parseInstant(computedAt)
	return &sc, nil
}

// InsertScoreIfAbsent stores sc unless the period already has a row, then
// returns whichever row is stored.
func (s *Store) InsertScoreIfAbsent(ctx context.Context, sc performance.Score) (performance.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO performance_scores (`+scoreColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, month, year) DO NOTHING
	`,
		sc.ID, sc.UserID, sc.Month, sc.Year, sc.Score, sc.ReportConsistency, sc.TaskScore,
		sc.AttendanceRate, sc.TrainingScore, sc.AchievementCount, formatInstant(sc.ComputedAt),
	)
	if err != nil {
		return performance.Score{}, fmt.Errorf("failed to insert score: %w", err)
	}

	stored, err := s.getScore(ctx, sc.UserID, sc.MonthRef())
	if err != nil {
		return performance.Score{}, err
	}
	if stored == nil {
		return performance.Score{}, fmt.Errorf("score for %s %s vanished after insert", sc.UserID, sc.MonthRef())
	}
	return *stored, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"performance_scores", "tasks", "daily_reports", "attendance_logs", "staff"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

func (s *Store) userSet(ctx context.Context, query string, args ...any) (map[generic.UserID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[generic.UserID]bool)
	for rows.Next() {
		var id generic.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// Helper functions

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func parseInstant(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullInstant(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatInstant(*t), Valid: true}
}

func parseNullInstant(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseInstant(ns.String)
	return &t
}

func nullDay(d *generic.TimePoint) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDay(ns sql.NullString) *generic.TimePoint {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := generic.ParseDate(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

var (
	_ attendance.Store       = (*Store)(nil)
	_ reports.Store          = (*Store)(nil)
	_ performance.Source     = (*Store)(nil)
	_ performance.ScoreStore = (*Store)(nil)
	_ tasks.Store            = (*Store)(nil)
)
