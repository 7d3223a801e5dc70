package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	Attendance   AttendanceHandler
	Notification NotificationHandler
	Report       ReportHandler
	Schedule     ScheduleHandler
	Absence      AbsenceHandler
	TimeBank     TimeBankHandler
	Expense      ExpenseHandler
	AdminUser    AdminUserHandler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, translator *i18n.Translator, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "Content-Language"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
		// Streams stay open for minutes; logging them on close is noise.
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/v1/attendance/stream"
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.Locale(translator))

	// Admin endpoints keep their own path and response shape.
	r.Route("/api/admin/users", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService))
		r.Use(middleware.RequireAdmin)
		r.Get("/", h.AdminUser.List)
		r.Post("/", h.AdminUser.Execute)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		// EventSource cannot send headers; the stream authenticates with a
		// short-lived token in the query string.
		r.Get("/attendance/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/logout", h.Auth.Logout)
				r.Post("/change-password", h.Auth.ChangePassword)
				r.Post("/sse-token", h.Auth.SSEToken)
			})

			r.Route("/attendance", func(r chi.Router) {
				// Own clock
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Use(middleware.RequirePermission(user.PermissionAttendanceClock))
					r.Post("/clock-in", h.Attendance.ClockIn)
					r.Post("/clock-out", h.Attendance.ClockOut)
					r.Post("/break/start", h.Attendance.StartBreak)
					r.Post("/break/end", h.Attendance.EndBreak)
					r.Post("/project", h.Attendance.ChangeProject)
					r.Post("/open-session/resolve", h.Attendance.ResolveOpenSession)
				})

				r.Get("/status", h.Attendance.Status)
				r.Get("/summary", h.Report.Summary)
				r.Get("/entries", h.Attendance.Entries)
				r.Get("/export", h.Report.Export)
				r.Post("/alerts/dismiss", h.Notification.DismissAlert)

				// Manager
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCorrect))
					r.Get("/employees/{employeeID}/summary", h.Report.Summary)
					r.Get("/employees/{employeeID}/entries", h.Attendance.Entries)
					r.Get("/employees/{employeeID}/export", h.Report.Export)
					r.Post("/employees/{employeeID}/entries", h.Attendance.RectifyEntry)
					r.Post("/entries/{id}/cancel", h.Attendance.CancelEntry)
					r.Get("/regularizations", h.Attendance.ListRegularizations)
					r.Post("/regularizations/{id}/approve", h.Attendance.ApproveRegularization)
					r.Post("/regularizations/{id}/reject", h.Attendance.RejectRegularization)
				})
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/effective", h.Schedule.Effective)
				r.Get("/assignments", h.Schedule.ListAssignments)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionScheduleManage))

					r.Route("/templates", func(r chi.Router) {
						r.Get("/", h.Schedule.ListTemplates)
						r.Post("/", h.Schedule.CreateTemplate)
						r.Post("/import", h.Schedule.ImportTemplate)
						r.Route("/{id}", func(r chi.Router) {
							r.Get("/", h.Schedule.GetTemplate)
							r.Put("/", h.Schedule.UpdateTemplate)
							r.Delete("/", h.Schedule.DeleteTemplate)
							r.Post("/periods", h.Schedule.CreatePeriod)
						})
					})

					r.Route("/periods/{id}", func(r chi.Router) {
						r.Put("/", h.Schedule.UpdatePeriod)
						r.Delete("/", h.Schedule.DeletePeriod)
						r.Put("/patterns/{day}", h.Schedule.UpsertDayPattern)
					})

					r.Post("/assignments", h.Schedule.CreateAssignment)
					r.Delete("/assignments/{id}", h.Schedule.DeleteAssignment)
				})
			})

			r.Route("/absences", func(r chi.Router) {
				r.Get("/", h.Absence.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAbsenceManage))
					r.Post("/", h.Absence.Create)
					r.Delete("/{id}", h.Absence.Delete)
				})
			})

			r.Route("/time-bank", func(r chi.Router) {
				r.Get("/balance", h.TimeBank.Balance)
				r.Get("/ledger", h.TimeBank.Ledger)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTimeBankManage))
					r.Post("/adjustments", h.TimeBank.Adjust)
				})
				r.With(middleware.RequireAdmin).Post("/post", h.TimeBank.Post)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.Expense.List)
				r.Post("/", h.Expense.Create)
				r.With(middleware.RequirePermission(user.PermissionExpenseReview)).Get("/review", h.Expense.Review)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Expense.Get)
					r.Put("/", h.Expense.Update)
					r.Delete("/", h.Expense.Delete)
					r.Post("/submit", h.Expense.Submit)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionExpenseReview))
						r.Post("/approve", h.Expense.Approve)
						r.Post("/reject", h.Expense.Reject)
						r.Post("/reimburse", h.Expense.Reimburse)
					})
				})
			})
		})
	})
	return r
}
