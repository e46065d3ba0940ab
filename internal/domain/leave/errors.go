package leave

import "errors"

var (
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveTypeInactive    = errors.New("leave type is inactive")
	ErrBalanceNotFound      = errors.New("leave balance not found")
	ErrInsufficientBalance  = errors.New("insufficient leave balance")
	ErrNotReserved          = errors.New("pending days do not cover the requested amount")
	ErrRequestNotFound      = errors.New("leave request not found")
	ErrRequestAlreadyClosed = errors.New("leave request has already been processed")
)
