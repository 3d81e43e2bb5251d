package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
)

// UserHeader carries the caller's staff id, set by the auth layer in front
// of this service.
const UserHeader = "X-User-ID"

type ctxKey int

const staffKey ctxKey = iota

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Authenticate resolves the X-User-ID header to a staff record.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(UserHeader))
		if id == "" {
			writeError(w, http.StatusUnauthorized, "Missing "+UserHeader+" header", nil)
			return
		}
		st, err := h.Store.GetStaff(r.Context(), generic.UserID(id))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load user", err)
			return
		}
		if st == nil {
			writeError(w, http.StatusUnauthorized, "Unknown user", nil)
			return
		}
		ctx := context.WithValue(r.Context(), staffKey, *st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers without the admin role. Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r).Role != generic.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) generic.Staff {
	st, _ := r.Context().Value(staffKey).(generic.Staff)
	return st
}
