package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

type approvalRepository struct {
	db *database.DB
}

func NewApprovalRepository(db *database.DB) approval.Repository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, a approval.Approval) (approval.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approvals (id, entity_type, entity_id, status, current_step)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING version, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		a.ID, a.EntityType, a.EntityID, a.Status, a.CurrentStep,
	).Scan(&a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return approval.Approval{}, fmt.Errorf("failed to create approval: %w", mapError(err))
	}

	stepQuery := `
		INSERT INTO approval_steps (id, approval_id, approver_id, step_order, status)
		VALUES ($1, $2, $3, $4, $5)`
	for _, step := range a.Steps {
		if _, err := q.Exec(ctx, stepQuery,
			step.ID, a.ID, step.ApproverID, step.StepOrder, step.Status,
		); err != nil {
			return approval.Approval{}, fmt.Errorf("failed to create approval step: %w", mapError(err))
		}
	}

	return a, nil
}

func (r *approvalRepository) GetByID(ctx context.Context, id string, forUpdate bool) (approval.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, entity_type, entity_id, status, current_step, version,
			   created_at, updated_at
		FROM approvals
		WHERE id = $1`
	if forUpdate {
		query += `
		FOR UPDATE`
	}

	var a approval.Approval
	err := q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.EntityType, &a.EntityID, &a.Status, &a.CurrentStep, &a.Version,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.Approval{}, approval.ErrNotFound
		}
		return approval.Approval{}, fmt.Errorf("failed to get approval: %w", err)
	}

	steps, err := r.loadSteps(ctx, a.ID)
	if err != nil {
		return approval.Approval{}, err
	}
	a.Steps = steps

	return a, nil
}

func (r *approvalRepository) loadSteps(ctx context.Context, approvalID string) ([]approval.Step, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, approval_id, approver_id, step_order, status, comments, acted_at
		FROM approval_steps
		WHERE approval_id = $1
		ORDER BY step_order`

	rows, err := q.Query(ctx, query, approvalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval steps: %w", err)
	}
	defer rows.Close()

	steps := make([]approval.Step, 0)
	for rows.Next() {
		var s approval.Step
		if err := rows.Scan(&s.ID, &s.ApprovalID, &s.ApproverID, &s.StepOrder,
			&s.Status, &s.Comments, &s.ActedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval step: %w", err)
		}
		steps = append(steps, s)
	}

	return steps, rows.Err()
}

func (r *approvalRepository) GetOpenByEntity(ctx context.Context, entityType approval.EntityType, entityID string) (*approval.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, entity_type, entity_id, status, current_step, version,
			   created_at, updated_at
		FROM approvals
		WHERE entity_type = $1 AND entity_id = $2 AND status = 'pending'
		LIMIT 1`

	var a approval.Approval
	err := q.QueryRow(ctx, query, entityType, entityID).Scan(
		&a.ID, &a.EntityType, &a.EntityID, &a.Status, &a.CurrentStep, &a.Version,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open approval: %w", err)
	}

	steps, err := r.loadSteps(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Steps = steps

	return &a, nil
}

func (r *approvalRepository) UpdateStep(ctx context.Context, step approval.Step) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE approval_steps
		SET status = $2, comments = $3, acted_at = $4
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, step.ID, step.Status, step.Comments, step.ActedAt)
	if err != nil {
		return fmt.Errorf("failed to update approval step: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrNotFound
	}

	return nil
}

func (r *approvalRepository) UpdateStatus(ctx context.Context, id string, status approval.Status, currentStep int) (approval.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE approvals
		SET status = $2, current_step = $3,
			version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING id, entity_type, entity_id, status, current_step, version,
				  created_at, updated_at`

	var a approval.Approval
	err := q.QueryRow(ctx, query, id, status, currentStep).Scan(
		&a.ID, &a.EntityType, &a.EntityID, &a.Status, &a.CurrentStep, &a.Version,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.Approval{}, approval.ErrNotFound
		}
		return approval.Approval{}, fmt.Errorf("failed to update approval status: %w", mapError(err))
	}

	steps, err := r.loadSteps(ctx, a.ID)
	if err != nil {
		return approval.Approval{}, err
	}
	a.Steps = steps

	return a, nil
}

func (r *approvalRepository) ListPendingForApprover(ctx context.Context, approverID string) ([]approval.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.entity_type, a.entity_id, a.status, a.current_step,
			   a.version, a.created_at, a.updated_at
		FROM approvals a
		JOIN approval_steps s ON s.approval_id = a.id AND s.step_order = a.current_step
		WHERE a.status = 'pending' AND s.approver_id = $1
		ORDER BY a.created_at`

	rows, err := q.Query(ctx, query, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	defer rows.Close()

	approvals := make([]approval.Approval, 0)
	for rows.Next() {
		var a approval.Approval
		if err := rows.Scan(&a.ID, &a.EntityType, &a.EntityID, &a.Status,
			&a.CurrentStep, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range approvals {
		steps, err := r.loadSteps(ctx, approvals[i].ID)
		if err != nil {
			return nil, err
		}
		approvals[i].Steps = steps
	}

	return approvals, nil
}
