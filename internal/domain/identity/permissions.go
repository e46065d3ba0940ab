package identity

import "context"

// rolePermissions maps roles to the resource actions they may perform.
var rolePermissions = map[Role]map[Resource][]Action{
	RoleOwner: {
		ResourceAttendance: {ActionRead, ActionWrite},
		ResourceLeave:      {ActionRead, ActionWrite, ActionApprove},
		ResourceApproval:   {ActionRead, ActionApprove},
		ResourcePayroll:    {ActionRead, ActionCompute, ActionApprove, ActionPay},
	},
	RoleManager: {
		ResourceAttendance: {ActionRead, ActionWrite},
		ResourceLeave:      {ActionRead, ActionWrite, ActionApprove},
		ResourceApproval:   {ActionRead, ActionApprove},
		ResourcePayroll:    {ActionRead, ActionCompute},
	},
	RoleEmployee: {
		ResourceAttendance: {ActionRead, ActionWrite},
		ResourceLeave:      {ActionRead, ActionWrite},
		ResourceApproval:   {ActionRead},
	},
}

// RoleChecker authorizes against the actor's token-claim role. It stands in
// for the identity collaborator's permission service in single-binary
// deployments.
type RoleChecker struct{}

func NewRoleChecker() *RoleChecker {
	return &RoleChecker{}
}

func (c *RoleChecker) Can(ctx context.Context, actorID string, resource Resource, action Action) bool {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.ID != actorID {
		return false
	}

	actions, ok := rolePermissions[actor.Role][resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
