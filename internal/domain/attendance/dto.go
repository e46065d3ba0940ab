package attendance

import (
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/pkg/validator"
)

type CheckInRequest struct {
	EmployeeID string     `json:"employee_id"`
	Timestamp  *time.Time `json:"timestamp,omitempty"` // defaults to now
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	EmployeeID string     `json:"employee_id"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpsertManualRequest is an administrative correction of one employee-day.
type UpsertManualRequest struct {
	EmployeeID string     `json:"employee_id"`
	Date       string     `json:"date"` // "2006-01-02"
	CheckIn    *time.Time `json:"check_in,omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	Status     *string    `json:"status,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

func (r *UpsertManualRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsValidDate(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Status != nil {
		switch Status(*r.Status) {
		case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusOnLeave:
		default:
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of present, absent, late, half_day, on_leave",
			})
		}
	}

	if r.CheckIn != nil && r.CheckOut != nil && r.CheckOut.Before(*r.CheckIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: "check_out must not precede check_in",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListFilter struct {
	EmployeeID *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Status     *Status
	Page       int
	Limit      int
}

// SweepResult reports one absentee sweep run. Per-employee failures are
// collected, never fatal for the batch.
type SweepResult struct {
	Date     time.Time `json:"date"`
	Marked   int       `json:"marked"`
	Skipped  int       `json:"skipped"`
	Warnings []string  `json:"warnings,omitempty"`
}
