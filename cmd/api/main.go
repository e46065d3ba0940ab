package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/config"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	appHTTP "github.com/kenzahr/workforce-ledger-go/internal/handler/http"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/cron"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/jwt"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/sse"
	"github.com/kenzahr/workforce-ledger-go/internal/repository/postgresql"
	approvalService "github.com/kenzahr/workforce-ledger-go/internal/service/approval"
	attendanceService "github.com/kenzahr/workforce-ledger-go/internal/service/attendance"
	consistencyService "github.com/kenzahr/workforce-ledger-go/internal/service/consistency"
	leaveService "github.com/kenzahr/workforce-ledger-go/internal/service/leave"
	notificationService "github.com/kenzahr/workforce-ledger-go/internal/service/notification"
	payrollService "github.com/kenzahr/workforce-ledger-go/internal/service/payroll"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "workforce-ledger"),
		slog.String("env", cfg.App.Env),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	txManager := database.NewTxManager(db)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	salaryStructureRepo := postgresql.NewSalaryStructureRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	approvalRepo := postgresql.NewApprovalRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	permissions := identity.NewRoleChecker()

	hub := sse.NewHub()
	notifier := notificationService.NewSSENotifier(hub, logger)

	coordinator := consistencyService.NewCoordinator(payrollRepo, logger)

	engine := approvalService.NewEngine(txManager, approvalRepo, permissions, notifier, logger)

	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		employeeRepo,
		permissions,
		coordinator,
		attendance.Policy{
			StandardDayMinutes: cfg.Attendance.StandardDayMinutes,
			GraceMinutes:       cfg.Attendance.GraceMinutes,
			HalfDayMinutes:     cfg.Attendance.HalfDayMinutes,
		},
		logger,
	)

	balanceSvc := leaveService.NewBalanceService(txManager, leaveBalanceRepo, leaveTypeRepo, permissions, logger)
	requestSvc := leaveService.NewRequestService(
		txManager,
		leaveRequestRepo,
		leaveBalanceRepo,
		leaveTypeRepo,
		engine,
		permissions,
		coordinator,
		notifier,
		logger,
	)

	overtimeMultiplier, err := decimal.NewFromString(cfg.Payroll.OvertimeMultiplier)
	if err != nil {
		fmt.Println("Invalid PAYROLL_OVERTIME_MULTIPLIER:", err)
		return
	}

	payrollSvc := payrollService.NewPayrollService(
		txManager,
		payrollRepo,
		attendanceRepo,
		leaveRequestRepo,
		employeeRepo,
		salaryStructureRepo,
		engine,
		coordinator,
		permissions,
		notifier,
		payrollService.Policy{
			StandardMonthlyHours:      cfg.Payroll.StandardMonthlyHours,
			DefaultOvertimeMultiplier: overtimeMultiplier,
		},
		logger,
	)

	engine.Register(approval.EntityLeaveRequest, approval.CallbackFuncs{
		Approved: requestSvc.HandleApproved,
		Rejected: requestSvc.HandleRejected,
	})
	engine.Register(approval.EntityPayrollRun, approval.CallbackFuncs{
		Approved: payrollSvc.HandleApproved,
		Rejected: payrollSvc.HandleRejected,
	})

	scheduler := cron.NewScheduler()
	jobs := cron.NewLedgerJobs(
		attendanceSvc,
		balanceSvc,
		employeeRepo,
		time.Duration(cfg.Attendance.SweepIntervalHours)*time.Hour,
	)
	jobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg.App.Env,
		jwtService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(requestSvc, balanceSvc),
		appHTTP.NewApprovalHandler(engine),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewNotificationHandler(hub, jwtService),
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := server.Close(); err != nil {
		logger.Error("server close failed", slog.Any("error", err))
	}
}
