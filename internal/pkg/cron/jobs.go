package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/employee"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
)

type LedgerJobs struct {
	attendanceService attendance.Service
	balanceService    leave.BalanceService
	employeeRepo      employee.EmployeeRepository
	sweepInterval     time.Duration
	now               func() time.Time
}

func NewLedgerJobs(
	attendanceService attendance.Service,
	balanceService leave.BalanceService,
	employeeRepo employee.EmployeeRepository,
	sweepInterval time.Duration,
) *LedgerJobs {
	return &LedgerJobs{
		attendanceService: attendanceService,
		balanceService:    balanceService,
		employeeRepo:      employeeRepo,
		sweepInterval:     sweepInterval,
		now:               time.Now,
	}
}

func (j *LedgerJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sweep_absentees", j.sweepInterval, j.SweepAbsentees)
	scheduler.AddJob("rollover_leave_year", 24*time.Hour, j.RolloverLeaveYear)
}

// SweepAbsentees back-fills absent records for the previous day. The sweep
// itself is idempotent, so the hourly cadence only narrows the gap for
// late-arriving corrections.
func (j *LedgerJobs) SweepAbsentees(ctx context.Context) error {
	// scheduled work runs as the system principal
	ctx = identity.WithActor(ctx, identity.Actor{ID: "system", Role: identity.RoleOwner})
	yesterday := j.now().UTC().AddDate(0, 0, -1)

	result, err := j.attendanceService.SweepAbsentees(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("absentee sweep failed: %w", err)
	}

	slog.Info("Cron: absentee sweep finished",
		"date", result.Date.Format("2006-01-02"),
		"marked", result.Marked,
		"skipped", result.Skipped,
		"warnings", len(result.Warnings))

	return nil
}

// RolloverLeaveYear creates next-year balances during January. Re-runs are
// no-ops because the balance insert is conditional.
func (j *LedgerJobs) RolloverLeaveYear(ctx context.Context) error {
	now := j.now().UTC()
	if now.Month() != time.January {
		return nil
	}

	// scheduled work runs as the system principal
	ctx = identity.WithActor(ctx, identity.Actor{ID: "system", Role: identity.RoleOwner})

	fromYear := now.Year() - 1
	employees, err := j.employeeRepo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	rolled := 0
	for _, emp := range employees {
		balances, err := j.balanceService.RolloverYear(ctx, emp.ID, fromYear, fromYear+1)
		if err != nil {
			slog.Error("Cron: leave rollover failed for employee",
				"employee_id", emp.ID, "error", err)
			continue
		}
		rolled += len(balances)
	}

	slog.Info("Cron: leave year rollover finished",
		"from_year", fromYear, "balances_created", rolled)

	return nil
}
