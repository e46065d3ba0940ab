package approval

import "context"

type Repository interface {
	// Create persists the approval and its steps; a second open approval
	// for the same (entity_type, entity_id) surfaces the store's conflict.
	Create(ctx context.Context, a Approval) (Approval, error)

	// GetByID loads the approval with its ordered steps. forUpdate locks
	// the row for the lifetime of the ambient transaction.
	GetByID(ctx context.Context, id string, forUpdate bool) (Approval, error)

	GetOpenByEntity(ctx context.Context, entityType EntityType, entityID string) (*Approval, error)

	// UpdateStep writes one step's outcome.
	UpdateStep(ctx context.Context, step Step) error

	// UpdateStatus writes the derived approval status and bumps its version.
	UpdateStatus(ctx context.Context, id string, status Status, currentStep int) (Approval, error)

	// ListPendingForApprover returns approvals whose current step waits on
	// the given approver.
	ListPendingForApprover(ctx context.Context, approverID string) ([]Approval, error)
}
