package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type RunStatus string

const (
	RunStatusDraft    RunStatus = "draft"
	RunStatusComputed RunStatus = "computed"
	RunStatusApproved RunStatus = "approved"
	RunStatusPaid     RunStatus = "paid"
)

// Run is one computed pay period. At most one run exists per (Month, Year).
// A stale run had source attendance or leave facts change after computation
// and blocks approval until recomputed.
type Run struct {
	ID           string
	Month        int
	Year         int
	Status       RunStatus
	Stale        bool
	StaleReasons []string
	Warnings     []string
	ApprovalID   *string
	ComputedAt   *time.Time
	PaidAt       *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Covers reports whether the run's period contains the given date.
func (r Run) Covers(date time.Time) bool {
	return int(date.Month()) == r.Month && date.Year() == r.Year
}

// Entry is the immutable per-employee result of one computation. Once the
// run leaves draft, recomputation writes a new revision and supersedes the
// old one rather than mutating it.
type Entry struct {
	ID          string
	RunID       string
	EmployeeID  string
	Revision    int
	GrossSalary decimal.Decimal
	OvertimePay decimal.Decimal
	Deductions  decimal.Decimal
	NetSalary   decimal.Decimal
	Snapshot    Snapshot
	Superseded  bool
	CreatedAt   time.Time
}

// Snapshot freezes the source totals an entry was derived from, so a later
// dispute is resolved without re-deriving from since-changed ledgers.
type Snapshot struct {
	WorkMinutes     int             `json:"work_minutes"`
	OvertimeMinutes int             `json:"overtime_minutes"`
	LateMinutes     int             `json:"late_minutes"`
	PaidLeaveDays   decimal.Decimal `json:"paid_leave_days"`
	UnpaidLeaveDays decimal.Decimal `json:"unpaid_leave_days"`
	BaseMonthly     decimal.Decimal `json:"base_monthly"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
}
