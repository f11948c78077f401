package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/workboard-api/internal/models"
)

func TestPrincipal_CanMutateTask(t *testing.T) {
	task := &models.Task{AssignedByID: "owner", AssignedToID: "doer"}

	assert.True(t, (&Principal{ID: "owner", Role: models.RoleLeader}).CanMutateTask(task))
	assert.False(t, (&Principal{ID: "doer", Role: models.RoleLeader}).CanMutateTask(task))
	assert.False(t, (&Principal{ID: "other", Role: models.RoleLeader}).CanMutateTask(task))
	assert.True(t, (&Principal{ID: "other", Role: models.RoleAdmin}).CanMutateTask(task))
	assert.True(t, (&Principal{ID: "other", Role: models.RoleSuperAdmin}).CanMutateTask(task))

	var nobody *Principal
	assert.False(t, nobody.CanMutateTask(task))
}

func TestPrincipal_CanAccessUser(t *testing.T) {
	self := &Principal{ID: "u1", Role: models.RoleMember}
	assert.True(t, self.CanAccessUser("u1"))
	assert.False(t, self.CanAccessUser("u2"))
	assert.True(t, (&Principal{ID: "a", Role: models.RoleAdmin}).CanAccessUser("u2"))
}
