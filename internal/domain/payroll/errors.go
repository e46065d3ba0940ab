package payroll

import "errors"

var (
	ErrRunNotFound      = errors.New("payroll run not found")
	ErrRunAlreadyExists = errors.New("a payroll run already exists for this period")
	ErrRunNotDraft      = errors.New("payroll run has left draft and cannot be recomputed directly")
	ErrRunStale         = errors.New("payroll run is stale and must be recomputed first")
	ErrRunNotComputed   = errors.New("payroll run has not been computed")
	ErrRunNotApproved   = errors.New("payroll run has not been approved")
	ErrEntryNotFound    = errors.New("payroll entry not found")
)
