package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepository struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepository{db: db}
}

const balanceColumns = `
	id, employee_id, leave_type_id, year, total_days, used_days,
	pending_days, carried_forward, version, created_at, updated_at`

func scanBalance(row pgx.Row) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year, &b.TotalDays, &b.UsedDays,
		&b.PendingDays, &b.CarriedForward, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *leaveBalanceRepository) GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + balanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3`

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return b, nil
}

func (r *leaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + balanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND year = $2
		ORDER BY leave_type_id`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// Reserve increments pending_days only when the remaining balance covers the
// requested days. The guard lives in the WHERE clause so two racing
// reservations cannot both pass it.
func (r *leaveBalanceRepository) Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET pending_days = pending_days + $4,
			version = version + 1, updated_at = NOW()
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
		  AND total_days - used_days - pending_days >= $4
		RETURNING` + balanceColumns

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year, days))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrInsufficientBalance
		}
		return leave.Balance{}, fmt.Errorf("failed to reserve leave days: %w", mapError(err))
	}

	return b, nil
}

func (r *leaveBalanceRepository) Commit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET pending_days = pending_days - $4,
			used_days = used_days + $4,
			version = version + 1, updated_at = NOW()
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
		  AND pending_days >= $4
		RETURNING` + balanceColumns

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year, days))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrNotReserved
		}
		return leave.Balance{}, fmt.Errorf("failed to commit leave days: %w", mapError(err))
	}

	return b, nil
}

func (r *leaveBalanceRepository) Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET pending_days = pending_days - $4,
			version = version + 1, updated_at = NOW()
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
		  AND pending_days >= $4
		RETURNING` + balanceColumns

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year, days))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrNotReserved
		}
		return leave.Balance{}, fmt.Errorf("failed to release leave days: %w", mapError(err))
	}

	return b, nil
}

// CreateIfAbsent is the rollover insert: the (employee_id, leave_type_id,
// year) key plus DO NOTHING makes retried rollovers write at most one row.
func (r *leaveBalanceRepository) CreateIfAbsent(ctx context.Context, balance leave.Balance) (bool, error) {
	q := GetQuerier(ctx, r.db)

	if balance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return false, fmt.Errorf("failed to generate balance id: %w", err)
		}
		balance.ID = id.String()
	}

	query := `
		INSERT INTO leave_balances (
			id, employee_id, leave_type_id, year, total_days, used_days,
			pending_days, carried_forward
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING`

	tag, err := q.Exec(ctx, query,
		balance.ID, balance.EmployeeID, balance.LeaveTypeID, balance.Year,
		balance.TotalDays, balance.UsedDays, balance.PendingDays, balance.CarriedForward,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create leave balance: %w", mapError(err))
	}

	return tag.RowsAffected() > 0, nil
}

func (r *leaveBalanceRepository) AdjustOverride(ctx context.Context, employeeID, leaveTypeID string, year int, deltaTotal decimal.Decimal, reason string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	// Administrative override: the remaining >= 0 invariant is deliberately
	// not enforced here. The reason lands in the audit trail.
	query := `
		UPDATE leave_balances
		SET total_days = total_days + $4,
			version = version + 1, updated_at = NOW()
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
		RETURNING` + balanceColumns

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year, deltaTotal))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to adjust leave balance: %w", mapError(err))
	}

	auditQuery := `
		INSERT INTO leave_balance_audit (id, balance_id, delta_total, reason)
		VALUES ($1, $2, $3, $4)`
	auditID, err := uuid.NewV7()
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to generate audit id: %w", err)
	}
	if _, err := q.Exec(ctx, auditQuery, auditID.String(), b.ID, deltaTotal, reason); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to write balance audit: %w", mapError(err))
	}

	return b, nil
}
