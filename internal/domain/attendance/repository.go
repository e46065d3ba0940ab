package attendance

import (
	"context"
	"time"
)

// MonthlySummary aggregates one employee's derived minutes over a calendar
// month. Payroll consumes it as a snapshot input.
type MonthlySummary struct {
	EmployeeID      string
	WorkMinutes     int
	OvertimeMinutes int
	LateMinutes     int
	DaysPresent     int
	DaysAbsent      int
}

type Repository interface {
	// Create inserts a record; a duplicate (employee_id, date) among
	// non-superseded rows surfaces the store's conflict error.
	Create(ctx context.Context, rec Record) (Record, error)

	// CreateAbsentIfMissing inserts an absent record only when no record
	// exists for the day. Returns true when a row was written.
	CreateAbsentIfMissing(ctx context.Context, rec Record) (bool, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// GetByEmployeeAndDate returns the current (non-superseded) record for
	// the day, nil when absent.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Update rewrites the record's derived fields and bumps its version.
	Update(ctx context.Context, rec Record) (Record, error)

	// Supersede stamps the record so a corrected row can replace it while
	// the original stays as payroll evidence.
	Supersede(ctx context.Context, id string, at time.Time) error

	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)

	// GetMonthlySummary aggregates derived minutes for the month.
	GetMonthlySummary(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error)
}
