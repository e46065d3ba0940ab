package payroll

import "github.com/kenzahr/workforce-ledger-go/internal/pkg/validator"

type ComputeRunRequest struct {
	Month     int  `json:"month"`
	Year      int  `json:"year"`
	Recompute bool `json:"recompute"`
}

func (r *ComputeRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if r.Year < 2000 || r.Year > 2200 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year is out of range"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestApprovalRequest struct {
	ApproverIDs []string `json:"approver_ids"`
}

func (r *RequestApprovalRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.ApproverIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "approver_ids", Message: "at least one approver is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
