package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/payroll"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepository{db: db}
}

const runColumns = `id, month, year, status, stale, stale_reasons, warnings,
	approval_id, computed_at, paid_at, version, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.Run, error) {
	var run payroll.Run
	err := row.Scan(
		&run.ID, &run.Month, &run.Year, &run.Status, &run.Stale,
		&run.StaleReasons, &run.Warnings, &run.ApprovalID,
		&run.ComputedAt, &run.PaidAt, &run.Version,
		&run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (id, month, year, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query, run.ID, run.Month, run.Year, run.Status))
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", mapError(err))
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1`

	run, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) GetRunByPeriod(ctx context.Context, month, year int) (*payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE month = $1 AND year = $2`

	run, err := scanRun(q.QueryRow(ctx, query, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payroll run by period: %w", err)
	}

	return &run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, year *int) ([]payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs`
	args := []interface{}{}
	if year != nil {
		query += ` WHERE year = $1`
		args = append(args, *year)
	}
	query += ` ORDER BY year DESC, month DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	runs := make([]payroll.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *payrollRepository) UpdateRunStatus(ctx context.Context, id string, status payroll.RunStatus) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $2,
			computed_at = CASE WHEN $2 = 'computed' THEN NOW() ELSE computed_at END,
			paid_at = CASE WHEN $2 = 'paid' THEN NOW() ELSE paid_at END,
			version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to update payroll run status: %w", mapError(err))
	}

	return run, nil
}

func (r *payrollRepository) MarkStale(ctx context.Context, id string, reason string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET stale = TRUE, stale_reasons = array_append(stale_reasons, $2),
			version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, id, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to mark payroll run stale: %w", mapError(err))
	}

	return run, nil
}

func (r *payrollRepository) ClearStale(ctx context.Context, id string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET stale = FALSE, stale_reasons = '{}',
			version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to clear payroll run stale flag: %w", mapError(err))
	}

	return run, nil
}

func (r *payrollRepository) SetWarnings(ctx context.Context, id string, warnings []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET warnings = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, warnings)
	if err != nil {
		return fmt.Errorf("failed to set payroll run warnings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}

func (r *payrollRepository) SetApprovalID(ctx context.Context, id string, approvalID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET approval_id = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, approvalID)
	if err != nil {
		return fmt.Errorf("failed to set payroll run approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}

const entryColumns = `id, run_id, employee_id, revision, gross_salary,
	overtime_pay, deductions, net_salary, snapshot, superseded, created_at`

func scanEntry(row pgx.Row) (payroll.Entry, error) {
	var e payroll.Entry
	err := row.Scan(
		&e.ID, &e.RunID, &e.EmployeeID, &e.Revision, &e.GrossSalary,
		&e.OvertimePay, &e.Deductions, &e.NetSalary, &e.Snapshot,
		&e.Superseded, &e.CreatedAt,
	)
	return e, err
}

func (r *payrollRepository) CreateEntry(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_entries (id, run_id, employee_id, revision,
			gross_salary, overtime_pay, deductions, net_salary, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + entryColumns

	created, err := scanEntry(q.QueryRow(ctx, query,
		entry.ID, entry.RunID, entry.EmployeeID, entry.Revision,
		entry.GrossSalary, entry.OvertimePay, entry.Deductions,
		entry.NetSalary, entry.Snapshot,
	))
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to create payroll entry: %w", mapError(err))
	}

	return created, nil
}

func (r *payrollRepository) SupersedeEntries(ctx context.Context, runID string, belowRevision int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries
		SET superseded = TRUE
		WHERE run_id = $1 AND revision < $2 AND superseded = FALSE`

	if _, err := q.Exec(ctx, query, runID, belowRevision); err != nil {
		return fmt.Errorf("failed to supersede payroll entries: %w", err)
	}

	return nil
}

func (r *payrollRepository) GetEntryByID(ctx context.Context, id string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + ` FROM payroll_entries WHERE id = $1`

	entry, err := scanEntry(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Entry{}, payroll.ErrEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}

	return entry, nil
}

func (r *payrollRepository) ListEntries(ctx context.Context, runID string, includeSuperseded bool) ([]payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + ` FROM payroll_entries WHERE run_id = $1`
	if !includeSuperseded {
		query += ` AND superseded = FALSE`
	}
	query += ` ORDER BY employee_id, revision`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	defer rows.Close()

	entries := make([]payroll.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *payrollRepository) CurrentRevision(ctx context.Context, runID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COALESCE(MAX(revision), 0) FROM payroll_entries WHERE run_id = $1`

	var rev int
	if err := q.QueryRow(ctx, query, runID).Scan(&rev); err != nil {
		return 0, fmt.Errorf("failed to get current payroll revision: %w", err)
	}

	return rev, nil
}
