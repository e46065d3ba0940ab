package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

// BalanceServiceImpl is the leave balance ledger. Every mutation is a
// conditional update inside a serializable transaction, so concurrent
// requests against the same balance cannot overspend it.
type BalanceServiceImpl struct {
	tx database.TxManager
	leave.BalanceRepository
	leave.LeaveTypeRepository
	permissions identity.PermissionChecker
	logger      *slog.Logger
}

func NewBalanceService(
	tx database.TxManager,
	balanceRepository leave.BalanceRepository,
	leaveTypeRepository leave.LeaveTypeRepository,
	permissions identity.PermissionChecker,
	logger *slog.Logger,
) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		tx:                  tx,
		BalanceRepository:   balanceRepository,
		LeaveTypeRepository: leaveTypeRepository,
		permissions:         permissions,
		logger:              logger,
	}
}

// Reserve implements leave.BalanceService.
func (s *BalanceServiceImpl) Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	var balance leave.Balance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = s.BalanceRepository.Reserve(ctx, employeeID, leaveTypeID, year, days)
		return err
	})
	return balance, err
}

// Commit implements leave.BalanceService.
func (s *BalanceServiceImpl) Commit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	var balance leave.Balance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = s.BalanceRepository.Commit(ctx, employeeID, leaveTypeID, year, days)
		return err
	})
	return balance, err
}

// Release implements leave.BalanceService.
func (s *BalanceServiceImpl) Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	var balance leave.Balance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = s.BalanceRepository.Release(ctx, employeeID, leaveTypeID, year, days)
		return err
	})
	return balance, err
}

// RolloverYear implements leave.BalanceService. The conditional insert makes
// the rollover idempotent: a second run finds the next year's rows already
// present and writes nothing.
func (s *BalanceServiceImpl) RolloverYear(ctx context.Context, employeeID string, fromYear, toYear int) ([]leave.Balance, error) {
	if toYear != fromYear+1 {
		return nil, fmt.Errorf("rollover must target the next year, got %d -> %d", fromYear, toYear)
	}

	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourceLeave, identity.ActionApprove) {
		return nil, identity.ErrForbidden
	}

	var rolled []leave.Balance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		balances, err := s.BalanceRepository.ListByEmployee(ctx, employeeID, fromYear)
		if err != nil {
			return err
		}

		for _, prev := range balances {
			lt, err := s.LeaveTypeRepository.GetByID(ctx, prev.LeaveTypeID)
			if err != nil {
				return err
			}

			carried := decimal.Zero
			if lt.CarryForwardAllowed {
				carried = prev.Remaining()
				if carried.GreaterThan(lt.MaxCarryForwardDays) {
					carried = lt.MaxCarryForwardDays
				}
				if carried.IsNegative() {
					carried = decimal.Zero
				}
			}

			next := leave.Balance{
				ID:             uuid.NewString(),
				EmployeeID:     employeeID,
				LeaveTypeID:    prev.LeaveTypeID,
				Year:           toYear,
				TotalDays:      lt.AnnualAllocation.Add(carried),
				CarriedForward: carried,
			}

			written, err := s.BalanceRepository.CreateIfAbsent(ctx, next)
			if err != nil {
				return err
			}
			if !written {
				s.logger.InfoContext(ctx, "rollover skipped, balance already exists",
					slog.String("employee_id", employeeID),
					slog.String("leave_type_id", prev.LeaveTypeID),
					slog.Int("year", toYear))
				continue
			}

			created, err := s.BalanceRepository.GetByEmployeeTypeYear(ctx, employeeID, prev.LeaveTypeID, toYear)
			if err != nil {
				return err
			}
			rolled = append(rolled, created)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			// a concurrent rollover won; its rows are the truth
			return nil, nil
		}
		return nil, err
	}

	return rolled, nil
}

// ListByEmployee implements leave.BalanceService.
func (s *BalanceServiceImpl) ListByEmployee(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourceLeave, identity.ActionRead) {
		return nil, identity.ErrForbidden
	}
	return s.BalanceRepository.ListByEmployee(ctx, employeeID, year)
}
