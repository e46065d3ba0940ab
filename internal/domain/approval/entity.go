package approval

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// EntityType names the kind of entity an approval gates. Callbacks are
// registered per type.
type EntityType string

const (
	EntityLeaveRequest EntityType = "leave_request"
	EntityPayrollRun   EntityType = "payroll_run"
)

// Approval gates one entity behind an ordered approver chain. Status is
// derived from its steps: approved iff all steps approved in order, rejected
// iff any step rejected, pending otherwise. Terminal states are final.
type Approval struct {
	ID          string
	EntityType  EntityType
	EntityID    string
	Status      Status
	CurrentStep int // index of first non-approved step
	Steps       []Step
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
)

// Step is one approver's slot in the chain.
type Step struct {
	ID         string
	ApprovalID string
	ApproverID string
	StepOrder  int
	Status     StepStatus
	Comments   *string
	ActedAt    *time.Time
}

// Derive recomputes the approval status from its steps.
func Derive(steps []Step) (Status, int) {
	for i, s := range steps {
		switch s.Status {
		case StepRejected:
			return StatusRejected, i
		case StepPending:
			return StatusPending, i
		}
	}
	return StatusApproved, len(steps)
}
