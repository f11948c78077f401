package access

import "github.com/yukikurage/workboard-api/internal/models"

// Principal is the identity snapshot attached to an authenticated request.
type Principal struct {
	ID    string
	Email string
	Role  models.Role
}

// NewPrincipal builds a principal from a freshly loaded user.
func NewPrincipal(user *models.User) *Principal {
	return &Principal{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}
}

func (p *Principal) IsAdminTier() bool {
	return p != nil && IsAdminTier(p.Role)
}

// CanAccessUser reports whether p may read or edit the user with the given ID.
func (p *Principal) CanAccessUser(userID string) bool {
	return p.IsAdminTier() || (p != nil && p.ID == userID)
}

// CanMutateTask reports whether p may update or delete the task. Only the
// creator (AssignedByID) or an admin-tier caller qualifies; the assignee
// never does.
func (p *Principal) CanMutateTask(task *models.Task) bool {
	if p == nil || task == nil {
		return false
	}
	return p.IsAdminTier() || task.AssignedByID == p.ID
}
