package auth

import (
	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/pkg/common"
)

// Role is the caller's platform role as asserted by the identity collaborator.
// Roles are ordered: user < moderator < admin.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

// String returns the wire name of the role
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleModerator:
		return "moderator"
	default:
		return "user"
	}
}

// ParseRole maps a wire role name to a Role. Unknown names degrade to the
// least-privileged role rather than failing the request.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "moderator":
		return RoleModerator
	default:
		return RoleUser
	}
}

// Actor identifies the authenticated caller of an operation. The engine
// trusts this as already authenticated by the platform gateway.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Require enforces the minimum role for an operation. Every lifecycle
// operation calls this before touching any store, so an unauthorized caller
// never observes whether the target entity exists.
func Require(actor Actor, min Role) error {
	if actor.ID == uuid.Nil {
		return common.NewUnauthorizedError("caller identity missing")
	}
	if actor.Role < min {
		return common.NewForbiddenError("insufficient role for this operation")
	}
	return nil
}
