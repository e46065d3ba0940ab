package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

type leaveTypeRepository struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepository{db: db}
}

const leaveTypeColumns = `
	id, name, code, paid, annual_allocation, carry_forward_allowed,
	max_carry_forward_days, is_active, created_at, updated_at`

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(
		&lt.ID, &lt.Name, &lt.Code, &lt.Paid, &lt.AnnualAllocation, &lt.CarryForwardAllowed,
		&lt.MaxCarryForwardDays, &lt.IsActive, &lt.CreatedAt, &lt.UpdatedAt,
	)
	return lt, err
}

func (r *leaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + leaveTypeColumns + `
		FROM leave_types
		WHERE id = $1`

	lt, err := scanLeaveType(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type: %w", err)
	}

	return lt, nil
}

func (r *leaveTypeRepository) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + leaveTypeColumns + `
		FROM leave_types`
	if activeOnly {
		query += `
		WHERE is_active`
	}
	query += `
		ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	types := make([]leave.LeaveType, 0)
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		types = append(types, lt)
	}

	return types, rows.Err()
}
