package identity

import (
	"context"
	"errors"
)

var ErrForbidden = errors.New("actor is not allowed to perform this action")

// Actor is the authenticated caller as supplied by the identity collaborator.
type Actor struct {
	ID         string
	EmployeeID string
	Role       Role
}

// PermissionChecker is the narrow interface this pipeline consumes from the
// identity layer. Every mutating operation asks it first.
type PermissionChecker interface {
	Can(ctx context.Context, actorID string, resource Resource, action Action) bool
}

type Resource string

const (
	ResourceAttendance Resource = "attendance"
	ResourceLeave      Resource = "leave"
	ResourceApproval   Resource = "approval"
	ResourcePayroll    Resource = "payroll"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionApprove Action = "approve"
	ActionCompute Action = "compute"
	ActionPay     Action = "pay"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

type actorKey struct{}

// WithActor stores the authenticated actor in the context. The HTTP layer
// derives it from verified token claims.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, if present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
