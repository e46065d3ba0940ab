package notification

import "context"

// Event names published by the ledger pipeline.
const (
	EventLeaveRequestSubmitted = "leave_request.submitted"
	EventLeaveRequestApproved  = "leave_request.approved"
	EventLeaveRequestRejected  = "leave_request.rejected"
	EventApprovalStepWaiting   = "approval.step_waiting"
	EventPayrollRunComputed    = "payroll_run.computed"
	EventPayrollRunStale       = "payroll_run.stale"
)

// Notifier is the delivery collaborator. Calls are fire-and-forget, best
// effort, and never fail the operation that emits them.
type Notifier interface {
	Notify(ctx context.Context, userID string, event string, payload map[string]interface{})
}
