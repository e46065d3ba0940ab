package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceService is the leave balance ledger. All mutations run inside
// serializable transactions; reserve/commit/release are conditional updates.
type BalanceService interface {
	Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (Balance, error)
	Commit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (Balance, error)
	Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (Balance, error)

	// RolloverYear creates the next year's balance exactly once, carrying
	// min(remaining, max carry-forward) when the type allows it.
	RolloverYear(ctx context.Context, employeeID string, fromYear, toYear int) ([]Balance, error)

	ListByEmployee(ctx context.Context, employeeID string, year int) ([]Balance, error)
}

// RequestService drives the leave request lifecycle through the approval
// workflow engine.
type RequestService interface {
	CreateRequest(ctx context.Context, req CreateRequestRequest) (Request, error)
	CancelRequest(ctx context.Context, requestID string) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
}
