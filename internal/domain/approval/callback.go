package approval

import "context"

// EntityCallback is the capability an entity type registers with the engine.
// The engine invokes exactly one callback per finalization, inside the same
// transaction as its own status write; implementations mutate their ledger
// through repositories that join the ambient transaction.
type EntityCallback interface {
	OnApproved(ctx context.Context, entityID string) error
	OnRejected(ctx context.Context, entityID string) error
}

// CallbackFuncs adapts plain functions to EntityCallback.
type CallbackFuncs struct {
	Approved func(ctx context.Context, entityID string) error
	Rejected func(ctx context.Context, entityID string) error
}

func (c CallbackFuncs) OnApproved(ctx context.Context, entityID string) error {
	if c.Approved == nil {
		return nil
	}
	return c.Approved(ctx, entityID)
}

func (c CallbackFuncs) OnRejected(ctx context.Context, entityID string) error {
	if c.Rejected == nil {
		return nil
	}
	return c.Rejected(ctx, entityID)
}
