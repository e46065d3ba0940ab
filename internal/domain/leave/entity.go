package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveType struct {
	ID                  string
	Name                string
	Code                *string
	Paid                bool
	AnnualAllocation    decimal.Decimal
	CarryForwardAllowed bool
	MaxCarryForwardDays decimal.Decimal
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Balance is one employee's ledger row for a leave type and year.
// Invariants: TotalDays = AnnualAllocation + CarriedForward and
// Remaining() >= 0 outside flagged administrative overrides.
type Balance struct {
	ID             string
	EmployeeID     string
	LeaveTypeID    string
	Year           int
	TotalDays      decimal.Decimal
	UsedDays       decimal.Decimal
	PendingDays    decimal.Decimal
	CarriedForward decimal.Decimal
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Remaining is derived, never stored.
func (b Balance) Remaining() decimal.Decimal {
	return b.TotalDays.Sub(b.UsedDays).Sub(b.PendingDays)
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Request is a leave request. Status is a one-way machine: exactly one
// transition out of pending ever applies.
type Request struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	Days        decimal.Decimal
	Reason      *string
	Status      RequestStatus
	ApprovalID  *string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
