package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, date, check_in, check_out, status,
	work_minutes, late_minutes, overtime_minutes, manual_entry, notes,
	superseded_at, version, created_at, updated_at`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.CheckIn, &rec.CheckOut, &rec.Status,
		&rec.WorkMinutes, &rec.LateMinutes, &rec.OvertimeMinutes, &rec.ManualEntry, &rec.Notes,
		&rec.SupersededAt, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, check_in, check_out, status,
			work_minutes, late_minutes, overtime_minutes, manual_entry, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING version, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		rec.ID, rec.EmployeeID, rec.Date, rec.CheckIn, rec.CheckOut, rec.Status,
		rec.WorkMinutes, rec.LateMinutes, rec.OvertimeMinutes, rec.ManualEntry, rec.Notes,
	).Scan(&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", mapError(err))
	}

	return rec, nil
}

// CreateAbsentIfMissing is the conflict-tolerant sweep insert: the partial
// unique index on (employee_id, date) arbitrates concurrent sweeps and
// check-ins, and DO NOTHING makes re-runs no-ops.
func (r *attendanceRepository) CreateAbsentIfMissing(ctx context.Context, rec attendance.Record) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, status, work_minutes, late_minutes,
			overtime_minutes, manual_entry
		) VALUES ($1, $2, $3, $4, 0, 0, 0, false)
		ON CONFLICT (employee_id, date) WHERE superseded_at IS NULL DO NOTHING`

	tag, err := q.Exec(ctx, query, rec.ID, rec.EmployeeID, rec.Date, rec.Status)
	if err != nil {
		return false, fmt.Errorf("failed to insert absent record: %w", mapError(err))
	}

	return tag.RowsAffected() > 0, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records
		WHERE id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return rec, nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2 AND superseded_at IS NULL
		LIMIT 1`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &rec, nil
}

func (r *attendanceRepository) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET check_in = $2, check_out = $3, status = $4,
			work_minutes = $5, late_minutes = $6, overtime_minutes = $7,
			manual_entry = $8, notes = $9,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND superseded_at IS NULL
		RETURNING version, updated_at`

	err := q.QueryRow(ctx, query,
		rec.ID, rec.CheckIn, rec.CheckOut, rec.Status,
		rec.WorkMinutes, rec.LateMinutes, rec.OvertimeMinutes,
		rec.ManualEntry, rec.Notes,
	).Scan(&rec.Version, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordSuperseded
		}
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", mapError(err))
	}

	return rec, nil
}

func (r *attendanceRepository) Supersede(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET superseded_at = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND superseded_at IS NULL`

	tag, err := q.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to supersede attendance record: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordSuperseded
	}

	return nil
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"superseded_at IS NULL"}
	args := []interface{}{}
	argPos := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argPos))
		args = append(args, *filter.EmployeeID)
		argPos++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argPos))
		args = append(args, *filter.DateFrom)
		argPos++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argPos))
		args = append(args, *filter.DateTo)
		argPos++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendance_records " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := "SELECT" + attendanceColumns + "\n\t\tFROM attendance_records " + where +
		fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

func (r *attendanceRepository) GetMonthlySummary(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(work_minutes), 0),
			   COALESCE(SUM(overtime_minutes), 0),
			   COALESCE(SUM(late_minutes), 0),
			   COUNT(*) FILTER (WHERE status IN ('present', 'late', 'half_day')),
			   COUNT(*) FILTER (WHERE status = 'absent')
		FROM attendance_records
		WHERE employee_id = $1
		  AND superseded_at IS NULL
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3`

	summary := attendance.MonthlySummary{EmployeeID: employeeID}
	err := q.QueryRow(ctx, query, employeeID, month, year).Scan(
		&summary.WorkMinutes, &summary.OvertimeMinutes, &summary.LateMinutes,
		&summary.DaysPresent, &summary.DaysAbsent,
	)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to aggregate attendance summary: %w", err)
	}

	return summary, nil
}
