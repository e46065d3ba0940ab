package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/handler/http/middleware"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/jwt"
)

func NewRouter(
	env string,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	approvalHandler ApprovalHandler,
	payrollHandler PayrollHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-ledger"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// token-in-query auth, outside the header verifier
		r.Get("/notifications/stream", notificationHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/", attendanceHandler.List)
				r.Get("/{id}", attendanceHandler.Get)
				r.Get("/employees/{employeeID}/summary", attendanceHandler.MonthlySummary)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(identity.RoleOwner, identity.RoleManager))
					r.Put("/manual", attendanceHandler.UpsertManual)
					r.Post("/sweep", attendanceHandler.Sweep)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/requests", leaveHandler.CreateRequest)
				r.Get("/requests", leaveHandler.ListRequests)
				r.Get("/requests/{id}", leaveHandler.GetRequest)
				r.Post("/requests/{id}/cancel", leaveHandler.CancelRequest)
				r.Get("/employees/{employeeID}/balances", leaveHandler.ListBalances)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(identity.RoleOwner, identity.RoleManager))
					r.Post("/rollover", leaveHandler.Rollover)
				})
			})

			r.Route("/approvals", func(r chi.Router) {
				r.Get("/pending", approvalHandler.ListPending)
				r.Get("/{id}", approvalHandler.Get)
				r.Post("/{id}/approve", approvalHandler.Approve)
				r.Post("/{id}/reject", approvalHandler.Reject)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.RequireRole(identity.RoleOwner, identity.RoleManager))
				r.Post("/runs", payrollHandler.Compute)
				r.Get("/runs", payrollHandler.ListRuns)
				r.Get("/runs/{id}", payrollHandler.GetRun)
				r.Post("/runs/{id}/request-approval", payrollHandler.RequestApproval)
				r.Get("/runs/{id}/entries", payrollHandler.ListEntries)
				r.Get("/entries/{entryID}", payrollHandler.GetEntry)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(identity.RoleOwner))
					r.Post("/runs/{id}/mark-paid", payrollHandler.MarkPaid)
				})
			})

			r.Get("/notifications/sse-token", notificationHandler.GetSSEToken)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
