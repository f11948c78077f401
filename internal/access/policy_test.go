package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workboard-api/internal/models"
)

func TestResolve(t *testing.T) {
	group := Require(models.RoleAdmin)
	operation := Require(models.RoleMember)

	tests := []struct {
		name      string
		group     Policy
		operation Policy
		want      Policy
	}{
		{"operation overrides group", group, operation, operation},
		{"group applies when operation undeclared", group, Policy{}, group},
		{"operation applies without group", Policy{}, operation, operation},
		{"nothing declared", Policy{}, Policy{}, Policy{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.group, tt.operation)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyCheck_NoRolesDeclared(t *testing.T) {
	var p Policy
	for _, role := range []models.Role{models.RoleMember, models.RoleLeader, models.RoleAdmin, models.RoleSuperAdmin} {
		assert.NoError(t, p.Check(role))
	}
}

func TestPolicyCheck_ExactMembership(t *testing.T) {
	p := Require(models.RoleMember)

	require.NoError(t, p.Check(models.RoleMember))
	// No hierarchy: outranking roles are not implicitly included.
	assert.ErrorIs(t, p.Check(models.RoleAdmin), ErrForbidden)
	assert.ErrorIs(t, p.Check(models.RoleSuperAdmin), ErrForbidden)
	assert.ErrorIs(t, p.Check(models.RoleLeader), ErrForbidden)
}

func TestPolicyCheck_EmptyDeclaredSet(t *testing.T) {
	p := Require()
	assert.True(t, p.Declared())
	assert.ErrorIs(t, p.Check(models.RoleSuperAdmin), ErrForbidden)
}

func TestIsAdminTier(t *testing.T) {
	assert.True(t, IsAdminTier(models.RoleAdmin))
	assert.True(t, IsAdminTier(models.RoleSuperAdmin))
	assert.False(t, IsAdminTier(models.RoleLeader))
	assert.False(t, IsAdminTier(models.RoleMember))
}
