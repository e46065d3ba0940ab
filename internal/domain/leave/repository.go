package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string) (LeaveType, error)
	List(ctx context.Context, activeOnly bool) ([]LeaveType, error)
}

type BalanceRepository interface {
	GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (Balance, error)
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]Balance, error)

	// Reserve moves days into pending, guarded by remaining >= days in a
	// single conditional update. Zero rows affected means ErrInsufficientBalance.
	Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (Balance, error)

	// Commit moves days from pending to used, guarded by pending >= days.
	Commit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (Balance, error)

	// Release returns reserved days, guarded by pending >= days.
	Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (Balance, error)

	// CreateIfAbsent inserts the year's balance row, doing nothing when it
	// already exists. Returns true when a row was written.
	CreateIfAbsent(ctx context.Context, balance Balance) (bool, error)

	// AdjustOverride applies a flagged administrative adjustment that may
	// drive remaining below zero.
	AdjustOverride(ctx context.Context, employeeID, leaveTypeID string, year int, deltaTotal decimal.Decimal, reason string) (Balance, error)
}

type RequestRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)

	// UpdateStatus transitions a pending request, guarded by
	// status = 'pending' so the state machine stays one-way.
	UpdateStatus(ctx context.Context, id string, status RequestStatus, approvalID *string) (Request, error)

	// ApprovedDaysInPeriod sums approved leave days overlapping the month,
	// split by paid flag of the leave type.
	ApprovedDaysInPeriod(ctx context.Context, employeeID string, month, year int) (paid, unpaid decimal.Decimal, err error)
}
