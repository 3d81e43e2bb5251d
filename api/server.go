/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: zap request logging
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for frontend

ROUTE GROUPS:
  /api/health           Liveness (no identity)
  /api/scenarios/*      Demo scenarios (no identity)
  /api/attendance/*     Check-in, check-out, timeline
  /api/reports/*        Daily reports, timeline
  /api/performance/*    Monthly score
  /api/dashboard        Staff landing page
  /api/admin/*          Admin views (admin role)

IDENTITY:
  Everything except health and scenarios requires X-User-ID.

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authenticate, RequireAdmin
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. An empty
// origin list allows the local frontend dev servers.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", UserHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/status", h.GetAttendanceStatus)
				r.Post("/check-in", h.CheckIn)
				r.Post("/check-out", h.CheckOut)
				r.Get("/history", h.GetAttendanceHistory)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Post("/", h.SubmitReport)
				r.Put("/{id}", h.UpdateReport)
				r.Get("/me", h.ListMyReports)
				r.Get("/history", h.GetReportHistory)
			})

			r.Get("/performance/my", h.GetMyPerformance)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/me", h.ListMyTasks)
				r.Post("/{id}/complete", h.CompleteTask)
			})
			r.Get("/dashboard", h.GetDashboard)

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/dashboard", h.GetAdminDashboard)
				r.Get("/reports/status", h.GetReportStatus)
				r.Get("/staff", h.ListStaff)
				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", h.ListTasks)
					r.Post("/", h.CreateTask)
					r.Post("/{id}/rate", h.RateTask)
				})
				r.Route("/staff/{id}", func(r chi.Router) {
					r.Get("/", h.GetStaffProfile)
					r.Get("/attendance", h.GetStaffAttendance)
					r.Get("/reports", h.GetStaffReports)
					r.Get("/performance", h.GetStaffPerformance)
					r.Get("/export", h.ExportStaffMonth)
				})
			})
		})
	})

	return r
}
