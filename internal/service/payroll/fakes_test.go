package payroll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/employee"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/payroll"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
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

// memoryRunRepo mirrors the conditional semantics of the SQL layer: a
// duplicate period on CreateRun surfaces database.ErrConflict.
type memoryRunRepo struct {
	mu      sync.Mutex
	runs    map[string]payroll.Run
	entries map[string]payroll.Entry
}

func newMemoryRunRepo() *memoryRunRepo {
	return &memoryRunRepo{
		runs:    make(map[string]payroll.Run),
		entries: make(map[string]payroll.Entry),
	}
}

func (r *memoryRunRepo) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.runs {
		if existing.Month == run.Month && existing.Year == run.Year {
			return payroll.Run{}, fmt.Errorf("duplicate period: %w", database.ErrConflict)
		}
	}
	run.Version = 1
	r.runs[run.ID] = run
	return run, nil
}

func (r *memoryRunRepo) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r *memoryRunRepo) GetRunByPeriod(ctx context.Context, month, year int) (*payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.Month == month && run.Year == year {
			out := run
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryRunRepo) ListRuns(ctx context.Context, year *int) ([]payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Run
	for _, run := range r.runs {
		if year != nil && run.Year != *year {
			continue
		}
		out = append(out, run)
	}
	return out, nil
}

func (r *memoryRunRepo) UpdateRunStatus(ctx context.Context, id string, status payroll.RunStatus) (payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	now := time.Now()
	run.Status = status
	switch status {
	case payroll.RunStatusComputed:
		run.ComputedAt = &now
	case payroll.RunStatusPaid:
		run.PaidAt = &now
	}
	run.Version++
	r.runs[id] = run
	return run, nil
}

func (r *memoryRunRepo) MarkStale(ctx context.Context, id string, reason string) (payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	run.Stale = true
	run.StaleReasons = append(run.StaleReasons, reason)
	run.Version++
	r.runs[id] = run
	return run, nil
}

func (r *memoryRunRepo) ClearStale(ctx context.Context, id string) (payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	run.Stale = false
	run.StaleReasons = nil
	run.Version++
	r.runs[id] = run
	return run, nil
}

func (r *memoryRunRepo) SetWarnings(ctx context.Context, id string, warnings []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.Warnings = warnings
	r.runs[id] = run
	return nil
}

func (r *memoryRunRepo) SetApprovalID(ctx context.Context, id string, approvalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.ApprovalID = &approvalID
	r.runs[id] = run
	return nil
}

func (r *memoryRunRepo) CreateEntry(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memoryRunRepo) SupersedeEntries(ctx context.Context, runID string, belowRevision int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.RunID == runID && e.Revision < belowRevision && !e.Superseded {
			e.Superseded = true
			r.entries[id] = e
		}
	}
	return nil
}

func (r *memoryRunRepo) GetEntryByID(ctx context.Context, id string) (payroll.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return payroll.Entry{}, payroll.ErrEntryNotFound
	}
	return e, nil
}

func (r *memoryRunRepo) ListEntries(ctx context.Context, runID string, includeSuperseded bool) ([]payroll.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Entry
	for _, e := range r.entries {
		if e.RunID != runID {
			continue
		}
		if e.Superseded && !includeSuperseded {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRunRepo) CurrentRevision(ctx context.Context, runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, e := range r.entries {
		if e.RunID == runID && e.Revision > max {
			max = e.Revision
		}
	}
	return max, nil
}

// summaryAttendanceRepo serves canned monthly aggregates; the record-level
// methods are unused by payroll computation.
type summaryAttendanceRepo struct {
	summaries map[string]attendance.MonthlySummary
	failures  map[string]error
}

func (r *summaryAttendanceRepo) GetMonthlySummary(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	if err, ok := r.failures[employeeID]; ok {
		return attendance.MonthlySummary{}, err
	}
	s, ok := r.summaries[employeeID]
	if !ok {
		return attendance.MonthlySummary{EmployeeID: employeeID}, nil
	}
	return s, nil
}

func (r *summaryAttendanceRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	return rec, nil
}

func (r *summaryAttendanceRepo) CreateAbsentIfMissing(ctx context.Context, rec attendance.Record) (bool, error) {
	return false, nil
}

func (r *summaryAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (r *summaryAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return nil, nil
}

func (r *summaryAttendanceRepo) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	return rec, nil
}

func (r *summaryAttendanceRepo) Supersede(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (r *summaryAttendanceRepo) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	return nil, 0, nil
}

// approvedLeaveRepo serves canned approved-day sums per employee.
type approvedLeaveRepo struct {
	paid   map[string]decimal.Decimal
	unpaid map[string]decimal.Decimal
}

func (r *approvedLeaveRepo) ApprovedDaysInPeriod(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, decimal.Decimal, error) {
	paid, ok := r.paid[employeeID]
	if !ok {
		paid = decimal.Zero
	}
	unpaid, ok := r.unpaid[employeeID]
	if !ok {
		unpaid = decimal.Zero
	}
	return paid, unpaid, nil
}

func (r *approvedLeaveRepo) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	return req, nil
}

func (r *approvedLeaveRepo) GetByID(ctx context.Context, id string) (leave.Request, error) {
	return leave.Request{}, leave.ErrRequestNotFound
}

func (r *approvedLeaveRepo) List(ctx context.Context, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	return nil, 0, nil
}

func (r *approvedLeaveRepo) UpdateStatus(ctx context.Context, id string, status leave.RequestStatus, approvalID *string) (leave.Request, error) {
	return leave.Request{}, leave.ErrRequestNotFound
}

type staticEmployeeRepo struct {
	employees []employee.Employee
}

func (r *staticEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *staticEmployeeRepo) GetActive(ctx context.Context) ([]employee.Employee, error) {
	return r.employees, nil
}

type staticSalaryRepo struct {
	structures map[string]employee.SalaryStructure
}

func (r *staticSalaryRepo) GetByEmployeeID(ctx context.Context, employeeID string) (employee.SalaryStructure, error) {
	s, ok := r.structures[employeeID]
	if !ok {
		return employee.SalaryStructure{}, employee.ErrSalaryStructureNotFound
	}
	return s, nil
}

// memoryApprovalRepo backs the real workflow engine in approval-gate tests.
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
		if a.Status != approval.StatusPending {
			continue
		}
		if a.CurrentStep < len(a.Steps) && a.Steps[a.CurrentStep].ApproverID == approverID {
			out = append(out, a)
		}
	}
	return out, nil
}
