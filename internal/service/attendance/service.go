package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/consistency"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/employee"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	tx database.TxManager
	attendance.Repository
	employee.EmployeeRepository
	permissions identity.PermissionChecker
	coordinator consistency.Coordinator
	policy      attendance.Policy
	logger      *slog.Logger
	now         func() time.Time
}

func NewAttendanceService(
	tx database.TxManager,
	attendanceRepository attendance.Repository,
	employeeRepository employee.EmployeeRepository,
	permissions identity.PermissionChecker,
	coordinator consistency.Coordinator,
	policy attendance.Policy,
	logger *slog.Logger,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		tx:                 tx,
		Repository:         attendanceRepository,
		EmployeeRepository: employeeRepository,
		permissions:        permissions,
		coordinator:        coordinator,
		policy:             policy,
		logger:             logger,
		now:                time.Now,
	}
}

func (s *AttendanceServiceImpl) authorize(ctx context.Context, action identity.Action) error {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourceAttendance, action) {
		return identity.ErrForbidden
	}
	return nil
}

// localDay returns the employee-local calendar day containing ts, truncated
// to midnight UTC for storage as a date.
func localDay(ts time.Time, emp employee.Employee) time.Time {
	loc, err := time.LoadLocation(emp.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := ts.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckIn implements attendance.Service.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}
	if err := s.authorize(ctx, identity.ActionWrite); err != nil {
		return attendance.Record{}, err
	}

	ts := s.now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.Record{}, err
	}

	loc, locErr := time.LoadLocation(emp.Timezone)
	if locErr != nil {
		loc = time.UTC
	}
	checkIn := ts.In(loc)

	lateMinutes, err := attendance.DeriveLateMinutes(checkIn, emp.ShiftStart, s.policy.GraceMinutes)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to derive lateness: %w", err)
	}

	status := attendance.StatusPresent
	if lateMinutes > 0 {
		status = attendance.StatusLate
	}

	rec := attendance.Record{
		ID:          uuid.NewString(),
		EmployeeID:  emp.ID,
		Date:        localDay(ts, emp),
		CheckIn:     &checkIn,
		Status:      status,
		LateMinutes: lateMinutes,
	}

	var created attendance.Record
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.Repository.GetByEmployeeAndDate(ctx, emp.ID, rec.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		created, err = s.Repository.Create(ctx, rec)
		return err
	})
	if err != nil {
		// the partial unique index wins races the read-then-insert loses
		if errors.Is(err, database.ErrConflict) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, err
	}

	return created, nil
}

// CheckOut implements attendance.Service.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}
	if err := s.authorize(ctx, identity.ActionWrite); err != nil {
		return attendance.Record{}, err
	}

	ts := s.now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.Record{}, err
	}

	loc, locErr := time.LoadLocation(emp.Timezone)
	if locErr != nil {
		loc = time.UTC
	}
	checkOut := ts.In(loc)

	var updated attendance.Record
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := s.Repository.GetByEmployeeAndDate(ctx, emp.ID, localDay(ts, emp))
		if err != nil {
			return err
		}
		if rec == nil || rec.CheckIn == nil || rec.CheckOut != nil {
			return attendance.ErrNoOpenCheckIn
		}

		rec.CheckOut = &checkOut
		rec.WorkMinutes = attendance.DeriveWorkMinutes(rec.CheckIn, rec.CheckOut)
		rec.OvertimeMinutes = attendance.DeriveOvertimeMinutes(rec.WorkMinutes, s.policy.StandardDayMinutes)
		if rec.WorkMinutes < s.policy.HalfDayMinutes && rec.Status != attendance.StatusLate {
			rec.Status = attendance.StatusHalfDay
		}

		updated, err = s.Repository.Update(ctx, *rec)
		return err
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return updated, nil
}

// UpsertManual implements attendance.Service. A correction supersedes the
// existing record instead of overwriting it, so payroll evidence survives.
func (s *AttendanceServiceImpl) UpsertManual(ctx context.Context, req attendance.UpsertManualRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}
	if err := s.authorize(ctx, identity.ActionWrite); err != nil {
		return attendance.Record{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.Record{}, err
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to parse date: %w", err)
	}

	rec := attendance.Record{
		ID:          uuid.NewString(),
		EmployeeID:  emp.ID,
		Date:        date,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		Status:      attendance.StatusPresent,
		ManualEntry: true,
		Notes:       req.Notes,
	}

	rec.WorkMinutes = attendance.DeriveWorkMinutes(rec.CheckIn, rec.CheckOut)
	rec.OvertimeMinutes = attendance.DeriveOvertimeMinutes(rec.WorkMinutes, s.policy.StandardDayMinutes)
	if rec.CheckIn != nil {
		lateMinutes, err := attendance.DeriveLateMinutes(*rec.CheckIn, emp.ShiftStart, s.policy.GraceMinutes)
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to derive lateness: %w", err)
		}
		rec.LateMinutes = lateMinutes
		if lateMinutes > 0 {
			rec.Status = attendance.StatusLate
		}
	}
	if req.Status != nil {
		rec.Status = attendance.Status(*req.Status)
	}

	var created attendance.Record
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.Repository.GetByEmployeeAndDate(ctx, emp.ID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.Repository.Supersede(ctx, existing.ID, s.now().UTC()); err != nil {
				return err
			}
		}

		created, err = s.Repository.Create(ctx, rec)
		if err != nil {
			return err
		}

		return s.coordinator.MarkStaleForDate(ctx, date,
			fmt.Sprintf("attendance corrected for employee %s on %s", emp.ID, req.Date))
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return created, nil
}

// SweepAbsentees implements attendance.Service. Each employee is handled in
// its own transaction so one failure never poisons the batch, and re-runs
// skip already-marked days via the conditional insert.
func (s *AttendanceServiceImpl) SweepAbsentees(ctx context.Context, date time.Time) (attendance.SweepResult, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	result := attendance.SweepResult{Date: day}

	if err := s.authorize(ctx, identity.ActionWrite); err != nil {
		return result, err
	}

	employees, err := s.EmployeeRepository.GetActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list active employees: %w", err)
	}

	for _, emp := range employees {
		rec := attendance.Record{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Date:       day,
			Status:     attendance.StatusAbsent,
		}

		var marked bool
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			marked, err = s.Repository.CreateAbsentIfMissing(ctx, rec)
			if err != nil {
				return err
			}
			if marked {
				return s.coordinator.MarkStaleForDate(ctx, day,
					fmt.Sprintf("absentee sweep marked employee %s on %s", emp.ID, day.Format("2006-01-02")))
			}
			return nil
		})
		if err != nil {
			s.logger.WarnContext(ctx, "absentee sweep failed for employee",
				slog.String("employee_id", emp.ID), slog.Any("error", err))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("employee %s: %v", emp.ID, err))
			continue
		}

		if marked {
			result.Marked++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// Get implements attendance.Service.
func (s *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.Record, error) {
	if err := s.authorize(ctx, identity.ActionRead); err != nil {
		return attendance.Record{}, err
	}
	return s.Repository.GetByID(ctx, id)
}

// List implements attendance.Service.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	if err := s.authorize(ctx, identity.ActionRead); err != nil {
		return nil, 0, err
	}
	return s.Repository.List(ctx, filter)
}

// MonthlySummary implements attendance.Service.
func (s *AttendanceServiceImpl) MonthlySummary(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	if err := s.authorize(ctx, identity.ActionRead); err != nil {
		return attendance.MonthlySummary{}, err
	}
	return s.Repository.GetMonthlySummary(ctx, employeeID, month, year)
}
