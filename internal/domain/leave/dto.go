package leave

import (
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateRequestRequest struct {
	EmployeeID  string   `json:"employee_id"`
	LeaveTypeID string   `json:"leave_type_id"`
	StartDate   string   `json:"start_date"` // "2006-01-02"
	EndDate     string   `json:"end_date"`
	Reason      *string  `json:"reason,omitempty"`
	ApproverIDs []string `json:"approver_ids"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{Field: "leave_type_id", Message: "leave_type_id is required"})
	}
	if !validator.IsValidDate(r.StartDate) {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	if !validator.IsValidDate(r.EndDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if validator.IsValidDate(r.StartDate) && validator.IsValidDate(r.EndDate) {
		start, _ := time.Parse("2006-01-02", r.StartDate)
		end, _ := time.Parse("2006-01-02", r.EndDate)
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not precede start_date"})
		}
	}
	if len(r.ApproverIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "approver_ids", Message: "at least one approver is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RolloverRequest struct {
	EmployeeID string `json:"employee_id"`
	FromYear   int    `json:"from_year"`
	ToYear     int    `json:"to_year"`
}

func (r *RolloverRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.FromYear < 2000 || r.FromYear > 2200 {
		errs = append(errs, validator.ValidationError{Field: "from_year", Message: "from_year is out of range"})
	}
	if r.ToYear != r.FromYear+1 {
		errs = append(errs, validator.ValidationError{Field: "to_year", Message: "to_year must be from_year + 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestFilter struct {
	EmployeeID *string
	Status     *RequestStatus
	Year       *int
	Page       int
	Limit      int
}

// CalendarDays counts days inclusive of both endpoints; weekend handling
// follows the leave type's policy upstream.
func CalendarDays(start, end time.Time) decimal.Decimal {
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(days))
}
