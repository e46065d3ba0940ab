package response

import (
	"errors"
	"net/http"

	"github.com/kenzahr/workforce-ledger-go/internal/domain/approval"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/employee"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/leave"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/payroll"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, identity.ErrForbidden):
		Forbidden(w, "You are not allowed to perform this action")

	// Attendance ledger errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in for this day")
	case errors.Is(err, attendance.ErrNoOpenCheckIn):
		BadRequest(w, "No open check-in for this day", nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrRecordSuperseded):
		Conflict(w, "Attendance record was superseded by a correction")

	// Employee errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrSalaryStructureNotFound):
		NotFound(w, "No salary structure effective for employee")

	// Leave ledger errors
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrLeaveTypeInactive):
		BadRequest(w, "Leave type is inactive", nil)
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrNotReserved):
		Conflict(w, "Requested days are not reserved")
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrRequestAlreadyClosed):
		Conflict(w, "Leave request already processed")

	// Approval workflow errors
	case errors.Is(err, approval.ErrNotFound):
		NotFound(w, "Approval not found")
	case errors.Is(err, approval.ErrNotCurrentApprover):
		Forbidden(w, "You are not the current approver")
	case errors.Is(err, approval.ErrAlreadyFinalized):
		Conflict(w, "Approval already finalized")
	case errors.Is(err, approval.ErrEmptyChain):
		BadRequest(w, "At least one approver is required", nil)
	case errors.Is(err, approval.ErrOpenApprovalExists):
		Conflict(w, "An open approval already exists for this entity")
	case errors.Is(err, approval.ErrUnknownEntityType):
		BadRequest(w, "Unknown approval entity type", nil)

	// Payroll errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrRunNotDraft):
		Conflict(w, "Payroll run has left draft")
	case errors.Is(err, payroll.ErrRunStale):
		Conflict(w, "Payroll run is stale and must be recomputed")
	case errors.Is(err, payroll.ErrRunNotComputed):
		Conflict(w, "Payroll run has not been computed")
	case errors.Is(err, payroll.ErrRunNotApproved):
		Conflict(w, "Payroll run has not been approved")
	case errors.Is(err, payroll.ErrEntryNotFound):
		NotFound(w, "Payroll entry not found")

	// Concurrency losses are retryable
	case errors.Is(err, database.ErrConflict):
		Conflict(w, "Conflicting concurrent write, please retry")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
