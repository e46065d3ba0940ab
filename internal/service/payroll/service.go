package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/consistency"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/employee"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/notification"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/payroll"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

var (
	sixty      = decimal.NewFromInt(60)
	oneHundred = decimal.NewFromInt(100)
)

// Policy carries the tenant-level computation constants.
type Policy struct {
	// StandardMonthlyHours divides the monthly base into an hourly rate.
	StandardMonthlyHours int
	// DefaultOvertimeMultiplier applies when a salary structure carries none.
	DefaultOvertimeMultiplier decimal.Decimal
}

type PayrollServiceImpl struct {
	tx database.TxManager
	payroll.Repository
	attendanceRepository attendance.Repository
	leaveRequests        leave.RequestRepository
	employeeRepository   employee.EmployeeRepository
	salaryStructures     employee.SalaryStructureRepository
	engine               approval.Engine
	coordinator          consistency.Coordinator
	permissions          identity.PermissionChecker
	notifier             notification.Notifier
	policy               Policy
	logger               *slog.Logger
}

func NewPayrollService(
	tx database.TxManager,
	payrollRepository payroll.Repository,
	attendanceRepository attendance.Repository,
	leaveRequests leave.RequestRepository,
	employeeRepository employee.EmployeeRepository,
	salaryStructures employee.SalaryStructureRepository,
	engine approval.Engine,
	coordinator consistency.Coordinator,
	permissions identity.PermissionChecker,
	notifier notification.Notifier,
	policy Policy,
	logger *slog.Logger,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		tx:                   tx,
		Repository:           payrollRepository,
		attendanceRepository: attendanceRepository,
		leaveRequests:        leaveRequests,
		employeeRepository:   employeeRepository,
		salaryStructures:     salaryStructures,
		engine:               engine,
		coordinator:          coordinator,
		permissions:          permissions,
		notifier:             notifier,
		policy:               policy,
		logger:               logger,
	}
}

func (s *PayrollServiceImpl) authorize(ctx context.Context, action identity.Action) error {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourcePayroll, action) {
		return identity.ErrForbidden
	}
	return nil
}

// ComputeRun implements payroll.Service.
func (s *PayrollServiceImpl) ComputeRun(ctx context.Context, req payroll.ComputeRunRequest) (payroll.Run, error) {
	if err := req.Validate(); err != nil {
		return payroll.Run{}, err
	}
	if err := s.authorize(ctx, identity.ActionCompute); err != nil {
		return payroll.Run{}, err
	}

	run, err := s.ensureRun(ctx, req)
	if err != nil {
		return payroll.Run{}, err
	}

	revision, err := s.Repository.CurrentRevision(ctx, run.ID)
	if err != nil {
		return payroll.Run{}, err
	}
	revision++

	employees, err := s.employeeRepository.GetActive(ctx)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	var warnings []string
	for _, emp := range employees {
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			return s.computeEntry(ctx, run, emp, revision)
		})
		if err != nil {
			// one employee's failure never loses the rest of the run
			if errors.Is(err, employee.ErrSalaryStructureNotFound) {
				warnings = append(warnings,
					fmt.Sprintf("employee %s skipped: no salary structure effective in period", emp.ID))
				continue
			}
			s.logger.WarnContext(ctx, "payroll entry computation failed",
				slog.String("run_id", run.ID),
				slog.String("employee_id", emp.ID),
				slog.Any("error", err))
			warnings = append(warnings, fmt.Sprintf("employee %s skipped: %v", emp.ID, err))
		}
	}

	var computed payroll.Run
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// prior revisions stay live until the new one lands, so an
		// interrupted compute keeps the last complete revision current
		if err := s.Repository.SupersedeEntries(ctx, run.ID, revision); err != nil {
			return err
		}
		if err := s.Repository.SetWarnings(ctx, run.ID, warnings); err != nil {
			return err
		}
		if _, err := s.Repository.ClearStale(ctx, run.ID); err != nil {
			return err
		}
		var err error
		computed, err = s.Repository.UpdateRunStatus(ctx, run.ID, payroll.RunStatusComputed)
		return err
	})
	if err != nil {
		return payroll.Run{}, err
	}

	actor, _ := identity.ActorFromContext(ctx)
	s.notifier.Notify(ctx, actor.ID, notification.EventPayrollRunComputed, map[string]interface{}{
		"run_id":   computed.ID,
		"month":    computed.Month,
		"year":     computed.Year,
		"revision": revision,
	})
	s.logger.InfoContext(ctx, "payroll run computed",
		slog.String("run_id", computed.ID),
		slog.Int("month", computed.Month),
		slog.Int("year", computed.Year),
		slog.Int("revision", revision),
		slog.Int("warnings", len(warnings)))

	return computed, nil
}

// ensureRun finds or creates the period's run and enforces the recompute
// gate: only a draft or computed run may be recomputed; approved and paid
// runs are settled.
func (s *PayrollServiceImpl) ensureRun(ctx context.Context, req payroll.ComputeRunRequest) (payroll.Run, error) {
	existing, err := s.Repository.GetRunByPeriod(ctx, req.Month, req.Year)
	if err != nil {
		return payroll.Run{}, err
	}

	if existing != nil {
		switch {
		case existing.Status == payroll.RunStatusDraft:
			return *existing, nil
		case req.Recompute && existing.Status == payroll.RunStatusComputed:
			return *existing, nil
		case req.Recompute:
			return payroll.Run{}, payroll.ErrRunNotDraft
		default:
			return payroll.Run{}, payroll.ErrRunAlreadyExists
		}
	}

	run := payroll.Run{
		ID:     uuid.NewString(),
		Month:  req.Month,
		Year:   req.Year,
		Status: payroll.RunStatusDraft,
	}

	var created payroll.Run
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.Repository.CreateRun(ctx, run)
		return err
	})
	if err != nil {
		// a concurrent compute created the period first
		if errors.Is(err, database.ErrConflict) {
			return payroll.Run{}, payroll.ErrRunAlreadyExists
		}
		return payroll.Run{}, err
	}

	return created, nil
}

func (s *PayrollServiceImpl) computeEntry(ctx context.Context, run payroll.Run, emp employee.Employee, revision int) error {
	structure, err := s.salaryStructures.GetByEmployeeID(ctx, emp.ID)
	if err != nil {
		return err
	}

	summary, err := s.attendanceRepository.GetMonthlySummary(ctx, emp.ID, run.Month, run.Year)
	if err != nil {
		return fmt.Errorf("failed to aggregate attendance: %w", err)
	}

	paidLeave, unpaidLeave, err := s.leaveRequests.ApprovedDaysInPeriod(ctx, emp.ID, run.Month, run.Year)
	if err != nil {
		return fmt.Errorf("failed to aggregate approved leave: %w", err)
	}

	multiplier := structure.OvertimeMultiplier
	if multiplier.IsZero() {
		multiplier = s.policy.DefaultOvertimeMultiplier
	}

	hourlyRate := structure.BaseMonthly.Div(decimal.NewFromInt(int64(s.policy.StandardMonthlyHours)))
	overtimePay := decimal.NewFromInt(int64(summary.OvertimeMinutes)).
		Div(sixty).Mul(hourlyRate).Mul(multiplier)

	allowances := decimal.Zero
	componentDeductions := decimal.Zero
	for _, c := range structure.Components {
		amount := c.Amount
		if c.Calc == employee.ComponentCalcPercent {
			amount = structure.BaseMonthly.Mul(c.Amount).Div(oneHundred)
		}
		switch c.Type {
		case employee.ComponentTypeAllowance:
			allowances = allowances.Add(amount)
		case employee.ComponentTypeDeduction:
			componentDeductions = componentDeductions.Add(amount)
		}
	}

	daysInMonth := decimal.NewFromInt(int64(daysIn(run.Month, run.Year)))
	unpaidDeduction := structure.BaseMonthly.Div(daysInMonth).Mul(unpaidLeave)

	gross := structure.BaseMonthly.Add(allowances).Add(overtimePay)
	deductions := componentDeductions.Add(unpaidDeduction)
	net := gross.Sub(deductions)

	entry := payroll.Entry{
		ID:          uuid.NewString(),
		RunID:       run.ID,
		EmployeeID:  emp.ID,
		Revision:    revision,
		GrossSalary: gross.Round(2),
		OvertimePay: overtimePay.Round(2),
		Deductions:  deductions.Round(2),
		NetSalary:   net.Round(2),
		Snapshot: payroll.Snapshot{
			WorkMinutes:     summary.WorkMinutes,
			OvertimeMinutes: summary.OvertimeMinutes,
			LateMinutes:     summary.LateMinutes,
			PaidLeaveDays:   paidLeave,
			UnpaidLeaveDays: unpaidLeave,
			BaseMonthly:     structure.BaseMonthly,
			HourlyRate:      hourlyRate.Round(4),
		},
	}

	_, err = s.Repository.CreateEntry(ctx, entry)
	return err
}

func daysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RequestApproval implements payroll.Service.
func (s *PayrollServiceImpl) RequestApproval(ctx context.Context, runID string, approverIDs []string) (payroll.Run, error) {
	if err := s.authorize(ctx, identity.ActionCompute); err != nil {
		return payroll.Run{}, err
	}

	var run payroll.Run
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.coordinator.EnsureApprovable(ctx, runID); err != nil {
			return err
		}

		a, err := s.engine.Submit(ctx, approval.EntityPayrollRun, runID, approverIDs)
		if err != nil {
			return err
		}

		if err := s.Repository.SetApprovalID(ctx, runID, a.ID); err != nil {
			return err
		}

		run, err = s.Repository.GetRunByID(ctx, runID)
		return err
	})
	if err != nil {
		return payroll.Run{}, err
	}

	return run, nil
}

// MarkPaid implements payroll.Service.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, runID string) (payroll.Run, error) {
	if err := s.authorize(ctx, identity.ActionPay); err != nil {
		return payroll.Run{}, err
	}

	var paid payroll.Run
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		run, err := s.Repository.GetRunByID(ctx, runID)
		if err != nil {
			return err
		}
		if run.Status != payroll.RunStatusApproved {
			return payroll.ErrRunNotApproved
		}
		if run.Stale {
			return payroll.ErrRunStale
		}

		paid, err = s.Repository.UpdateRunStatus(ctx, runID, payroll.RunStatusPaid)
		return err
	})
	if err != nil {
		return payroll.Run{}, err
	}

	return paid, nil
}

// HandleApproved transitions the run once its approval chain completes.
// Runs inside the workflow engine's transaction; a stale run fails the
// final approval step rather than freezing drifted numbers.
func (s *PayrollServiceImpl) HandleApproved(ctx context.Context, runID string) error {
	run, err := s.Repository.GetRunByID(ctx, runID)
	if err != nil {
		return err
	}
	if run.Stale {
		return payroll.ErrRunStale
	}
	if run.Status != payroll.RunStatusComputed {
		return payroll.ErrRunNotComputed
	}

	_, err = s.Repository.UpdateRunStatus(ctx, runID, payroll.RunStatusApproved)
	return err
}

// HandleRejected keeps the run computed so it can be fixed and resubmitted.
func (s *PayrollServiceImpl) HandleRejected(ctx context.Context, runID string) error {
	run, err := s.Repository.GetRunByID(ctx, runID)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "payroll run approval rejected",
		slog.String("run_id", run.ID))

	return nil
}

// GetRun implements payroll.Service.
func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.Run, error) {
	if err := s.authorize(ctx, identity.ActionRead); err != nil {
		return payroll.Run{}, err
	}
	return s.Repository.GetRunByID(ctx, id)
}

// ListRuns implements payroll.Service.
func (s *PayrollServiceImpl) ListRuns(ctx context.Context, year *int) ([]payroll.Run, error) {
	if err := s.authorize(ctx, identity.ActionRead); err != nil {
		return nil, err
	}
	return s.Repository.ListRuns(ctx, year)
}

// ListEntries implements payroll.Service.
func (s *PayrollServiceImpl) ListEntries(ctx context.Context, runID string) ([]payroll.Entry, error) {
	if err := s.authorize(ctx, identity.ActionRead); err != nil {
		return nil, err
	}
	return s.Repository.ListEntries(ctx, runID, false)
}

// GetEntry implements payroll.Service.
func (s *PayrollServiceImpl) GetEntry(ctx context.Context, id string) (payroll.Entry, error) {
	if err := s.authorize(ctx, identity.ActionRead); err != nil {
		return payroll.Entry{}, err
	}
	return s.Repository.GetEntryByID(ctx, id)
}
