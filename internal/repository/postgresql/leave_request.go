package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepository{db: db}
}

const requestColumns = `
	id, employee_id, leave_type_id, start_date, end_date, days, reason,
	status, approval_id, version, created_at, updated_at`

func scanRequest(row pgx.Row) (leave.Request, error) {
	var req leave.Request
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate,
		&req.Days, &req.Reason, &req.Status, &req.ApprovalID, &req.Version,
		&req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type_id, start_date, end_date, days,
			reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING version, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		req.ID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.Days, req.Reason, req.Status,
	).Scan(&req.Version, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", mapError(err))
	}

	return req, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + requestColumns + `
		FROM leave_requests
		WHERE id = $1`

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return req, nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argPos))
		args = append(args, *filter.EmployeeID)
		argPos++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM start_date) = $%d", argPos))
		args = append(args, *filter.Year)
		argPos++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM leave_requests "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query := "SELECT" + requestColumns + "\n\t\tFROM leave_requests " + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}

// UpdateStatus only ever moves a request out of pending; the guard keeps the
// state machine one-way even under retried workflow callbacks.
func (r *leaveRequestRepository) UpdateStatus(ctx context.Context, id string, status leave.RequestStatus, approvalID *string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2,
			approval_id = COALESCE($3, approval_id),
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING` + requestColumns

	req, err := scanRequest(q.QueryRow(ctx, query, id, status, approvalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrRequestAlreadyClosed
		}
		return leave.Request{}, fmt.Errorf("failed to update leave request status: %w", mapError(err))
	}

	return req, nil
}

func (r *leaveRequestRepository) ApprovedDaysInPeriod(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	// Requests spanning month boundaries contribute only the overlapping
	// days, computed against the month's first and last day.
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN lt.paid THEN overlap.days ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN NOT lt.paid THEN overlap.days ELSE 0 END), 0)
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		CROSS JOIN LATERAL (
			SELECT GREATEST(0,
				LEAST(lr.end_date, (make_date($2::int, $3::int, 1) + INTERVAL '1 month - 1 day')::date)
				- GREATEST(lr.start_date, make_date($2::int, $3::int, 1)) + 1
			)::numeric AS days
		) overlap
		WHERE lr.employee_id = $1
		  AND lr.status = 'approved'
		  AND lr.start_date <= (make_date($2::int, $3::int, 1) + INTERVAL '1 month - 1 day')::date
		  AND lr.end_date >= make_date($2::int, $3::int, 1)`

	var paid, unpaid decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, year, month).Scan(&paid, &unpaid); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to aggregate approved leave days: %w", err)
	}

	return paid, unpaid, nil
}
