/*
handlers.go - HTTP API handlers for the workday engine

PURPOSE:
  Exposes attendance, daily reports, performance scores and dashboards via
  REST. Handles HTTP request/response, JSON serialization, and delegates to
  the domain packages.

ENDPOINTS:
  Self-service (caller identified by X-User-ID):
    GET    /api/attendance/status        Today's session state
    POST   /api/attendance/check-in      Open today's session
    POST   /api/attendance/check-out     Close today's session
    GET    /api/attendance/history       Month timeline (?month&year)
    POST   /api/reports                  Submit today's report
    PUT    /api/reports/{id}             Edit within the edit window
    GET    /api/reports/me               Own reports, newest first
    GET    /api/reports/history          Month timeline (?month&year)
    GET    /api/performance/my           Month score (?month&year)
    GET    /api/tasks/me                 Own tasks with counts
    POST   /api/tasks/{id}/complete      Complete an assigned task
    GET    /api/dashboard                Landing page

  Admin:
    GET    /api/admin/dashboard          Today across all staff
    GET    /api/admin/reports/status     Report board (?date&status)
    GET    /api/admin/staff              Staff list
    GET    /api/admin/staff/{id}         Profile for the month
    GET    /api/admin/staff/{id}/...     attendance, reports, performance, export
    GET    /api/admin/tasks              Tasks (?assigned_to&status&overdue)
    POST   /api/admin/tasks              Assign a task
    POST   /api/admin/tasks/{id}/rate    Rate a completed task

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    GET    /api/scenarios/current        Loaded scenario or null
    POST   /api/scenarios/load           Load a demo scenario
    POST   /api/scenarios/reset          Clear all data

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: staff, tasks and everything the scenarios seed
  - Attendance / Reports / Performance / Tasks: the engine services
  - Clock: the single source of "now" for each request

  Each request reads the clock once and passes that instant down, so every
  derived timeline and score in one response agrees on today.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, workflow violations
  - 401: Missing or unknown caller
  - 403: Not allowed (IP allow-list, edit window, admin only)
  - 404: Resource not found
  - 409: Conflict (duplicate report)
  - 400 also covers completing a finished task and rating an open one
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: identity and request logging
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/attendance"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/reports"
	"github.com/warp/workday-engine/roster"
	"github.com/warp/workday-engine/store/sqlite"
	"github.com/warp/workday-engine/tasks"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Clock       generic.Clock
	Attendance  *attendance.Recorder
	Reports     *reports.Desk
	Performance *performance.Service
	Tasks       *tasks.Tracker
	Roster      []roster.Person
	Logger      *zap.Logger

	scores   performance.ScoreStore
	validate *validator.Validate

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// Options configures NewHandler. Zero values fall back to defaults.
type Options struct {
	Clock      generic.Clock
	AllowedIPs []string
	Roster     []roster.Person
	// Scores overrides where computed scores are cached; nil uses Store.
	// If it has a Purge(ctx) method, resets call it after clearing Store.
	Scores performance.ScoreStore
	Logger *zap.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, opts Options) *Handler {
	clock := opts.Clock
	if clock == nil {
		clock = generic.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var scores performance.ScoreStore = store
	if opts.Scores != nil {
		scores = opts.Scores
	}
	loc := clock.Location()

	return &Handler{
		Store:       store,
		Clock:       clock,
		Attendance:  attendance.NewRecorder(store, loc, opts.AllowedIPs, logger.Named("attendance")),
		Reports:     reports.NewDesk(store, loc, logger.Named("reports")),
		Performance: performance.NewService(store, scores, logger.Named("performance")),
		Tasks:       tasks.NewTracker(store, loc, logger.Named("tasks")),
		Roster:      opts.Roster,
		Logger:      logger,
		scores:      scores,
		validate:    newValidator(),
	}
}

// Health pings the database.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// Report JSON field names in validation details.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. An empty body decodes
// to the zero value. On failure it writes the 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Validation failed",
				Code:    "validation_failed",
				Details: fields,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// monthParam reads ?month&year, each defaulting to the month of now.
func monthParam(r *http.Request, now time.Time, loc *time.Location) (generic.MonthRef, error) {
	current := generic.MonthOf(generic.DateOf(now, loc))
	month, year := current.Month, current.Year

	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return generic.MonthRef{}, &generic.ValidationError{Field: "month", Value: v, Err: generic.ErrInvalidMonth}
		}
		month = time.Month(n)
	}
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return generic.MonthRef{}, &generic.ValidationError{Field: "year", Value: v, Err: generic.ErrInvalidYear}
		}
		year = n
	}
	return generic.NewMonthRef(year, int(month))
}

// clientIP resolves the caller address: X-Real-IP, then the first
// X-Forwarded-For hop, then the connection's remote address.
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps a domain error to its status code.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var (
		status int
		code   string
	)
	switch {
	case generic.IsConflict(err):
		status, code = http.StatusConflict, "conflict"
	case generic.IsForbidden(err):
		status, code = http.StatusForbidden, "forbidden"
	case generic.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case generic.IsClientError(err):
		status, code = http.StatusBadRequest, "bad_request"
	default:
		h.Logger.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback, err)
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func round2(f float64) float64 {
	return generic.Round2(decimal.NewFromFloat(f))
}
