package approval

import "context"

// Engine is the generic ordered multi-approver workflow. It never mutates a
// domain ledger itself; finalization invokes the registered callback for the
// entity type atomically with the status write.
type Engine interface {
	// Register binds the callback invoked when an approval of entityType
	// finalizes. Wiring-time only, not safe for concurrent use afterwards.
	Register(entityType EntityType, cb EntityCallback)

	Submit(ctx context.Context, entityType EntityType, entityID string, approverIDs []string) (Approval, error)
	ApproveStep(ctx context.Context, approvalID, approverID string, comments *string) (Approval, error)
	RejectStep(ctx context.Context, approvalID, approverID string, reason *string) (Approval, error)

	Get(ctx context.Context, id string) (Approval, error)
	ListPendingForApprover(ctx context.Context, approverID string) ([]Approval, error)
}
