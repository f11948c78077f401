// Package access holds the role and ownership rules shared by the
// middleware and the services.
package access

import (
	"errors"

	"github.com/yukikurage/workboard-api/internal/models"
)

// ErrForbidden is returned when a caller's role is not in a declared role set.
var ErrForbidden = errors.New("you do not have permission to access this resource")

// RoleSet is a set of roles. A nil RoleSet means no requirement was declared.
type RoleSet map[models.Role]struct{}

// Roles builds a RoleSet from the given roles. Calling it with no arguments
// yields an empty, non-nil set that nobody can satisfy.
func Roles(roles ...models.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports literal membership. There is no hierarchy between roles.
func (s RoleSet) Contains(role models.Role) bool {
	_, ok := s[role]
	return ok
}

// AdminTier is the set of roles that bypass ownership checks.
var AdminTier = Roles(models.RoleAdmin, models.RoleSuperAdmin)

// IsAdminTier reports whether role is ADMIN or SUPER_ADMIN.
func IsAdminTier(role models.Role) bool {
	return AdminTier.Contains(role)
}

// Policy is the role requirement attached to a route or a route group.
type Policy struct {
	RequiredRoles RoleSet
}

// Require returns a policy that declares the given roles.
func Require(roles ...models.Role) Policy {
	return Policy{RequiredRoles: Roles(roles...)}
}

// Declared reports whether the policy carries a role set.
func (p Policy) Declared() bool {
	return p.RequiredRoles != nil
}

// Resolve picks the effective policy for an operation: a set declared on the
// operation overrides the group's, otherwise the group's applies.
func Resolve(group, operation Policy) Policy {
	if operation.Declared() {
		return operation
	}
	return group
}

// Check enforces the policy against the caller's role.
func (p Policy) Check(role models.Role) error {
	if !p.Declared() {
		return nil
	}
	if !p.RequiredRoles.Contains(role) {
		return ErrForbidden
	}
	return nil
}
