package leave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type allowAll struct{}

func (allowAll) Can(ctx context.Context, actorID string, resource identity.Resource, action identity.Action) bool {
	return true
}

type silentNotifier struct{}

func (silentNotifier) Notify(ctx context.Context, userID string, event string, payload map[string]interface{}) {
}

// recordingNotifier captures published events so tests can assert what went
// out and, just as important, what did not.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(ctx context.Context, userID string, event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, e := range n.events {
		if e == event {
			total++
		}
	}
	return total
}

// failingCommitTx runs the function, then reports the commit as failed.
type failingCommitTx struct{}

func (failingCommitTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return fmt.Errorf("commit failed")
}

type noopCoordinator struct{}

func (noopCoordinator) MarkStaleForDate(ctx context.Context, date time.Time, reason string) error {
	return nil
}

func (noopCoordinator) EnsureApprovable(ctx context.Context, runID string) error {
	return nil
}

type staticLeaveTypes struct {
	types map[string]leave.LeaveType
}

func (r *staticLeaveTypes) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	lt, ok := r.types[id]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

func (r *staticLeaveTypes) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	var out []leave.LeaveType
	for _, lt := range r.types {
		if activeOnly && !lt.IsActive {
			continue
		}
		out = append(out, lt)
	}
	return out, nil
}

// memoryBalanceRepo mirrors the store's conditional-update semantics: a
// guard that matches no row surfaces the same sentinel the SQL layer would.
type memoryBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]leave.Balance
}

func newMemoryBalanceRepo() *memoryBalanceRepo {
	return &memoryBalanceRepo{balances: make(map[string]leave.Balance)}
}

func balanceKey(employeeID, leaveTypeID string, year int) string {
	return fmt.Sprintf("%s|%s|%d", employeeID, leaveTypeID, year)
}

func (r *memoryBalanceRepo) seed(b leave.Balance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey(b.EmployeeID, b.LeaveTypeID, b.Year)] = b
}

func (r *memoryBalanceRepo) GetByEmployeeTypeYear(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[balanceKey(employeeID, leaveTypeID, year)]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (r *memoryBalanceRepo) ListByEmployee(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Balance
	for _, b := range r.balances {
		if b.EmployeeID == employeeID && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryBalanceRepo) Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(employeeID, leaveTypeID, year)
	b, ok := r.balances[key]
	if !ok || b.Remaining().LessThan(days) {
		return leave.Balance{}, leave.ErrInsufficientBalance
	}
	b.PendingDays = b.PendingDays.Add(days)
	b.Version++
	r.balances[key] = b
	return b, nil
}

func (r *memoryBalanceRepo) Commit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(employeeID, leaveTypeID, year)
	b, ok := r.balances[key]
	if !ok || b.PendingDays.LessThan(days) {
		return leave.Balance{}, leave.ErrNotReserved
	}
	b.PendingDays = b.PendingDays.Sub(days)
	b.UsedDays = b.UsedDays.Add(days)
	b.Version++
	r.balances[key] = b
	return b, nil
}

func (r *memoryBalanceRepo) Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(employeeID, leaveTypeID, year)
	b, ok := r.balances[key]
	if !ok || b.PendingDays.LessThan(days) {
		return leave.Balance{}, leave.ErrNotReserved
	}
	b.PendingDays = b.PendingDays.Sub(days)
	b.Version++
	r.balances[key] = b
	return b, nil
}

func (r *memoryBalanceRepo) CreateIfAbsent(ctx context.Context, balance leave.Balance) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(balance.EmployeeID, balance.LeaveTypeID, balance.Year)
	if _, ok := r.balances[key]; ok {
		return false, nil
	}
	balance.Version = 1
	r.balances[key] = balance
	return true, nil
}

func (r *memoryBalanceRepo) AdjustOverride(ctx context.Context, employeeID, leaveTypeID string, year int, deltaTotal decimal.Decimal, reason string) (leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(employeeID, leaveTypeID, year)
	b, ok := r.balances[key]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	b.TotalDays = b.TotalDays.Add(deltaTotal)
	b.Version++
	r.balances[key] = b
	return b, nil
}

type memoryRequestRepo struct {
	mu       sync.Mutex
	requests map[string]leave.Request
}

func newMemoryRequestRepo() *memoryRequestRepo {
	return &memoryRequestRepo{requests: make(map[string]leave.Request)}
}

func (r *memoryRequestRepo) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.Version = 1
	r.requests[req.ID] = req
	return req, nil
}

func (r *memoryRequestRepo) GetByID(ctx context.Context, id string) (leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	return req, nil
}

func (r *memoryRequestRepo) List(ctx context.Context, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Request
	for _, req := range r.requests {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRequestRepo) UpdateStatus(ctx context.Context, id string, status leave.RequestStatus, approvalID *string) (leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	if req.Status != leave.RequestStatusPending {
		return leave.Request{}, leave.ErrRequestAlreadyClosed
	}
	req.Status = status
	req.ApprovalID = approvalID
	req.Version++
	r.requests[id] = req
	return req, nil
}

func (r *memoryRequestRepo) ApprovedDaysInPeriod(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	paid := decimal.Zero
	unpaid := decimal.Zero
	for _, req := range r.requests {
		if req.EmployeeID != employeeID || req.Status != leave.RequestStatusApproved {
			continue
		}
		if int(req.StartDate.Month()) != month || req.StartDate.Year() != year {
			continue
		}
		// the fake attributes whole requests to their start month
		paid = paid.Add(req.Days)
	}
	return paid, unpaid, nil
}

// memoryApprovalRepo backs the real workflow engine in lifecycle tests.
type memoryApprovalRepo struct {
	mu        sync.Mutex
	approvals map[string]approval.Approval
}

func newMemoryApprovalRepo() *memoryApprovalRepo {
	return &memoryApprovalRepo{approvals: make(map[string]approval.Approval)}
}

func (r *memoryApprovalRepo) Create(ctx context.Context, a approval.Approval) (approval.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.Version = 1
	r.approvals[a.ID] = a
	return a, nil
}

func (r *memoryApprovalRepo) GetByID(ctx context.Context, id string, forUpdate bool) (approval.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.approvals[id]
	if !ok {
		return approval.Approval{}, approval.ErrNotFound
	}
	return a, nil
}

func (r *memoryApprovalRepo) GetOpenByEntity(ctx context.Context, entityType approval.EntityType, entityID string) (*approval.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.approvals {
		if a.EntityType == entityType && a.EntityID == entityID && a.Status == approval.StatusPending {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryApprovalRepo) UpdateStep(ctx context.Context, step approval.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.approvals[step.ApprovalID]
	if !ok {
		return approval.ErrNotFound
	}
	for i := range a.Steps {
		if a.Steps[i].ID == step.ID {
			a.Steps[i] = step
			r.approvals[step.ApprovalID] = a
			return nil
		}
	}
	return approval.ErrNotFound
}

func (r *memoryApprovalRepo) UpdateStatus(ctx context.Context, id string, status approval.Status, currentStep int) (approval.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.approvals[id]
	if !ok {
		return approval.Approval{}, approval.ErrNotFound
	}
	a.Status = status
	a.CurrentStep = currentStep
	a.Version++
	r.approvals[id] = a
	return a, nil
}

func (r *memoryApprovalRepo) ListPendingForApprover(ctx context.Context, approverID string) ([]approval.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []approval.Approval
	for _, a := range r.approvals {
		if a.Status != approval.StatusPending || a.CurrentStep >= len(a.Steps) {
			continue
		}
		if a.Steps[a.CurrentStep].ApproverID == approverID {
			out = append(out, a)
		}
	}
	return out, nil
}
