package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/notification"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

// EngineImpl drives ordered approver chains. Finalization and the registered
// entity callback commit or roll back together.
type EngineImpl struct {
	tx database.TxManager
	approval.Repository
	permissions identity.PermissionChecker
	notifier    notification.Notifier
	callbacks   map[approval.EntityType]approval.EntityCallback
	logger      *slog.Logger
	now         func() time.Time
}

func NewEngine(
	tx database.TxManager,
	approvalRepository approval.Repository,
	permissions identity.PermissionChecker,
	notifier notification.Notifier,
	logger *slog.Logger,
) *EngineImpl {
	return &EngineImpl{
		tx:          tx,
		Repository:  approvalRepository,
		permissions: permissions,
		notifier:    notifier,
		callbacks:   make(map[approval.EntityType]approval.EntityCallback),
		logger:      logger,
		now:         time.Now,
	}
}

// Register implements approval.Engine.
func (e *EngineImpl) Register(entityType approval.EntityType, cb approval.EntityCallback) {
	e.callbacks[entityType] = cb
}

// Submit implements approval.Engine.
func (e *EngineImpl) Submit(ctx context.Context, entityType approval.EntityType, entityID string, approverIDs []string) (approval.Approval, error) {
	if len(approverIDs) == 0 {
		return approval.Approval{}, approval.ErrEmptyChain
	}
	if _, ok := e.callbacks[entityType]; !ok {
		return approval.Approval{}, approval.ErrUnknownEntityType
	}

	a := approval.Approval{
		ID:          uuid.NewString(),
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      approval.StatusPending,
		CurrentStep: 0,
	}
	for i, approverID := range approverIDs {
		a.Steps = append(a.Steps, approval.Step{
			ID:         uuid.NewString(),
			ApprovalID: a.ID,
			ApproverID: approverID,
			StepOrder:  i,
			Status:     approval.StepPending,
		})
	}

	var created approval.Approval
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		open, err := e.Repository.GetOpenByEntity(ctx, entityType, entityID)
		if err != nil {
			return err
		}
		if open != nil {
			return approval.ErrOpenApprovalExists
		}

		created, err = e.Repository.Create(ctx, a)
		return err
	})
	if err != nil {
		return approval.Approval{}, err
	}

	notification.Deliver(ctx, e.notifier, approverIDs[0], notification.EventApprovalStepWaiting, map[string]interface{}{
		"approval_id": created.ID,
		"entity_type": string(entityType),
		"entity_id":   entityID,
		"step":        0,
	})

	return created, nil
}

// ApproveStep implements approval.Engine.
func (e *EngineImpl) ApproveStep(ctx context.Context, approvalID, approverID string, comments *string) (approval.Approval, error) {
	return e.decide(ctx, approvalID, approverID, approval.StepApproved, comments)
}

// RejectStep implements approval.Engine.
func (e *EngineImpl) RejectStep(ctx context.Context, approvalID, approverID string, reason *string) (approval.Approval, error) {
	return e.decide(ctx, approvalID, approverID, approval.StepRejected, reason)
}

func (e *EngineImpl) decide(ctx context.Context, approvalID, approverID string, outcome approval.StepStatus, comments *string) (approval.Approval, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !e.permissions.Can(ctx, actor.ID, identity.ResourceApproval, identity.ActionApprove) {
		return approval.Approval{}, identity.ErrForbidden
	}

	// events emitted by the entity callback only go out once the decision
	// commits; a rolled-back callback drops them with the transaction
	txCtx, queued := notification.WithBuffer(ctx)

	var final approval.Approval
	err := e.tx.WithinTx(txCtx, func(ctx context.Context) error {
		a, err := e.Repository.GetByID(ctx, approvalID, true)
		if err != nil {
			return err
		}
		if a.Status != approval.StatusPending {
			return approval.ErrAlreadyFinalized
		}

		step := a.Steps[a.CurrentStep]
		if step.ApproverID != approverID {
			return approval.ErrNotCurrentApprover
		}

		actedAt := e.now().UTC()
		step.Status = outcome
		step.Comments = comments
		step.ActedAt = &actedAt
		if err := e.Repository.UpdateStep(ctx, step); err != nil {
			return err
		}

		a.Steps[a.CurrentStep] = step
		status, currentStep := approval.Derive(a.Steps)

		final, err = e.Repository.UpdateStatus(ctx, a.ID, status, currentStep)
		if err != nil {
			return err
		}

		// callback failures roll back the decision itself
		if status != approval.StatusPending {
			cb, ok := e.callbacks[a.EntityType]
			if !ok {
				return approval.ErrUnknownEntityType
			}
			if status == approval.StatusApproved {
				return cb.OnApproved(ctx, a.EntityID)
			}
			return cb.OnRejected(ctx, a.EntityID)
		}
		return nil
	})
	if err != nil {
		return approval.Approval{}, err
	}

	queued.Flush(ctx, e.notifier)

	if final.Status == approval.StatusPending && final.CurrentStep < len(final.Steps) {
		next := final.Steps[final.CurrentStep]
		e.notifier.Notify(ctx, next.ApproverID, notification.EventApprovalStepWaiting, map[string]interface{}{
			"approval_id": final.ID,
			"entity_type": string(final.EntityType),
			"entity_id":   final.EntityID,
			"step":        next.StepOrder,
		})
	}

	e.logger.InfoContext(ctx, "approval step decided",
		slog.String("approval_id", final.ID),
		slog.String("approver_id", approverID),
		slog.String("outcome", string(outcome)),
		slog.String("status", string(final.Status)))

	return final, nil
}

// Get implements approval.Engine.
func (e *EngineImpl) Get(ctx context.Context, id string) (approval.Approval, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !e.permissions.Can(ctx, actor.ID, identity.ResourceApproval, identity.ActionRead) {
		return approval.Approval{}, identity.ErrForbidden
	}
	a, err := e.Repository.GetByID(ctx, id, false)
	if err != nil {
		return approval.Approval{}, fmt.Errorf("failed to get approval: %w", err)
	}
	return a, nil
}

// ListPendingForApprover implements approval.Engine.
func (e *EngineImpl) ListPendingForApprover(ctx context.Context, approverID string) ([]approval.Approval, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !e.permissions.Can(ctx, actor.ID, identity.ResourceApproval, identity.ActionRead) {
		return nil, identity.ErrForbidden
	}
	return e.Repository.ListPendingForApprover(ctx, approverID)
}
