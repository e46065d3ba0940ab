package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/consistency"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/notification"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

// RequestServiceImpl drives the leave request lifecycle. Submitting reserves
// balance days; the approval outcome commits or releases them through the
// workflow engine's callbacks.
type RequestServiceImpl struct {
	tx database.TxManager
	leave.RequestRepository
	leave.BalanceRepository
	leave.LeaveTypeRepository
	engine      approval.Engine
	permissions identity.PermissionChecker
	coordinator consistency.Coordinator
	notifier    notification.Notifier
	logger      *slog.Logger
}

func NewRequestService(
	tx database.TxManager,
	requestRepository leave.RequestRepository,
	balanceRepository leave.BalanceRepository,
	leaveTypeRepository leave.LeaveTypeRepository,
	engine approval.Engine,
	permissions identity.PermissionChecker,
	coordinator consistency.Coordinator,
	notifier notification.Notifier,
	logger *slog.Logger,
) *RequestServiceImpl {
	return &RequestServiceImpl{
		tx:                  tx,
		RequestRepository:   requestRepository,
		BalanceRepository:   balanceRepository,
		LeaveTypeRepository: leaveTypeRepository,
		engine:              engine,
		permissions:         permissions,
		coordinator:         coordinator,
		notifier:            notifier,
		logger:              logger,
	}
}

// CreateRequest implements leave.RequestService. Reservation, request row
// and approval submission commit atomically; any failure releases nothing
// because nothing was kept.
func (s *RequestServiceImpl) CreateRequest(ctx context.Context, req leave.CreateRequestRequest) (leave.Request, error) {
	if err := req.Validate(); err != nil {
		return leave.Request{}, err
	}

	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourceLeave, identity.ActionWrite) {
		return leave.Request{}, identity.ErrForbidden
	}

	lt, err := s.LeaveTypeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.Request{}, err
	}
	if !lt.IsActive {
		return leave.Request{}, leave.ErrLeaveTypeInactive
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	days := leave.CalendarDays(start, end)

	request := leave.Request{
		ID:          uuid.NewString(),
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		Reason:      req.Reason,
		Status:      leave.RequestStatusPending,
	}

	// the submission's approver event queues until the reservation commits
	txCtx, queued := notification.WithBuffer(ctx)

	var created leave.Request
	err = s.tx.WithinTx(txCtx, func(ctx context.Context) error {
		if lt.Paid {
			if _, err := s.BalanceRepository.Reserve(ctx, req.EmployeeID, req.LeaveTypeID, start.Year(), days); err != nil {
				return err
			}
		}

		var err error
		created, err = s.RequestRepository.Create(ctx, request)
		if err != nil {
			return err
		}

		a, err := s.engine.Submit(ctx, approval.EntityLeaveRequest, created.ID, req.ApproverIDs)
		if err != nil {
			return err
		}

		created, err = s.RequestRepository.UpdateStatus(ctx, created.ID, leave.RequestStatusPending, &a.ID)
		return err
	})
	if err != nil {
		return leave.Request{}, err
	}

	queued.Flush(ctx, s.notifier)

	s.notifier.Notify(ctx, created.EmployeeID, notification.EventLeaveRequestSubmitted, map[string]interface{}{
		"request_id": created.ID,
		"days":       created.Days.String(),
	})

	return created, nil
}

// CancelRequest implements leave.RequestService. Only a pending request can
// be cancelled; its reservation is released in the same transaction. A later
// approver decision on the now-dangling approval fails its callback and
// rolls back, so the ledger never double-moves.
func (s *RequestServiceImpl) CancelRequest(ctx context.Context, requestID string) (leave.Request, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourceLeave, identity.ActionWrite) {
		return leave.Request{}, identity.ErrForbidden
	}

	var cancelled leave.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		request, err := s.RequestRepository.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != leave.RequestStatusPending {
			return leave.ErrRequestAlreadyClosed
		}

		lt, err := s.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
		if err != nil {
			return err
		}
		if lt.Paid {
			if _, err := s.BalanceRepository.Release(ctx, request.EmployeeID, request.LeaveTypeID, request.StartDate.Year(), request.Days); err != nil {
				return err
			}
		}

		cancelled, err = s.RequestRepository.UpdateStatus(ctx, requestID, leave.RequestStatusCancelled, request.ApprovalID)
		return err
	})
	if err != nil {
		return leave.Request{}, err
	}

	return cancelled, nil
}

// Get implements leave.RequestService.
func (s *RequestServiceImpl) Get(ctx context.Context, id string) (leave.Request, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourceLeave, identity.ActionRead) {
		return leave.Request{}, identity.ErrForbidden
	}
	return s.RequestRepository.GetByID(ctx, id)
}

// List implements leave.RequestService.
func (s *RequestServiceImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	actor, ok := identity.ActorFromContext(ctx)
	if !ok || !s.permissions.Can(ctx, actor.ID, identity.ResourceLeave, identity.ActionRead) {
		return nil, 0, identity.ErrForbidden
	}
	return s.RequestRepository.List(ctx, filter)
}

// HandleApproved finalizes an approved request: pending days become used and
// the request closes. Runs inside the workflow engine's transaction.
func (s *RequestServiceImpl) HandleApproved(ctx context.Context, requestID string) error {
	request, err := s.RequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	lt, err := s.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
	if err != nil {
		return err
	}
	if lt.Paid {
		if _, err := s.BalanceRepository.Commit(ctx, request.EmployeeID, request.LeaveTypeID, request.StartDate.Year(), request.Days); err != nil {
			return fmt.Errorf("failed to commit reserved days: %w", err)
		}
	}

	if _, err := s.RequestRepository.UpdateStatus(ctx, requestID, leave.RequestStatusApproved, request.ApprovalID); err != nil {
		return err
	}

	for day := request.StartDate; !day.After(request.EndDate); day = day.AddDate(0, 0, 1) {
		if err := s.coordinator.MarkStaleForDate(ctx, day,
			fmt.Sprintf("leave approved for employee %s on %s", request.EmployeeID, day.Format("2006-01-02"))); err != nil {
			return err
		}
	}

	// still inside the engine's transaction; the buffered event only goes
	// out if the decision commits
	notification.Deliver(ctx, s.notifier, request.EmployeeID, notification.EventLeaveRequestApproved, map[string]interface{}{
		"request_id": request.ID,
	})
	s.logger.InfoContext(ctx, "leave request approved",
		slog.String("request_id", request.ID),
		slog.String("employee_id", request.EmployeeID))

	return nil
}

// HandleRejected releases the reservation and closes the request. Runs
// inside the workflow engine's transaction.
func (s *RequestServiceImpl) HandleRejected(ctx context.Context, requestID string) error {
	request, err := s.RequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	lt, err := s.LeaveTypeRepository.GetByID(ctx, request.LeaveTypeID)
	if err != nil {
		return err
	}
	if lt.Paid {
		if _, err := s.BalanceRepository.Release(ctx, request.EmployeeID, request.LeaveTypeID, request.StartDate.Year(), request.Days); err != nil {
			return fmt.Errorf("failed to release reserved days: %w", err)
		}
	}

	if _, err := s.RequestRepository.UpdateStatus(ctx, requestID, leave.RequestStatusRejected, request.ApprovalID); err != nil {
		return err
	}

	notification.Deliver(ctx, s.notifier, request.EmployeeID, notification.EventLeaveRequestRejected, map[string]interface{}{
		"request_id": request.ID,
	})

	return nil
}
