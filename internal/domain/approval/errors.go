package approval

import "errors"

var (
	ErrNotFound           = errors.New("approval not found")
	ErrNotCurrentApprover = errors.New("actor is not the current approver")
	ErrAlreadyFinalized   = errors.New("approval has already been finalized")
	ErrEmptyChain         = errors.New("approver chain must not be empty")
	ErrOpenApprovalExists = errors.New("an open approval already exists for this entity")
	ErrUnknownEntityType  = errors.New("no callback registered for entity type")
)
