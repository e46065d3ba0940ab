package attendance

import (
	"context"
	"time"
)

// Service is the attendance ledger's mutating and query surface.
type Service interface {
	// CheckIn records the start of an employee's day. Fails with
	// ErrAlreadyCheckedIn when an open record exists for the local day.
	CheckIn(ctx context.Context, req CheckInRequest) (Record, error)

	// CheckOut closes the open record and derives work and overtime minutes.
	CheckOut(ctx context.Context, req CheckOutRequest) (Record, error)

	// UpsertManual applies an administrative correction. Corrections inside
	// an already-computed payroll period mark that run stale.
	UpsertManual(ctx context.Context, req UpsertManualRequest) (Record, error)

	// SweepAbsentees back-fills absent records for every active employee
	// without a record on date. Idempotent: re-runs are no-ops.
	SweepAbsentees(ctx context.Context, date time.Time) (SweepResult, error)

	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)
	MonthlySummary(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error)
}
