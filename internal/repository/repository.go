package repository

import (
	"context"

	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/utils"
)

// TaskRepository defines the interface for task data access. Every read
// excludes soft-deleted tasks.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID regardless of who is asking
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// FindVisible finds a task by ID only if the viewer may see it
	FindVisible(ctx context.Context, id string, viewer *access.Principal) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// SoftDelete flags a task as deleted
	SoftDelete(ctx context.Context, id string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Viewer     *access.Principal
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssignedTo string
	AssignedBy string
	Pagination utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error

	// Update persists every column of an existing user
	Update(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// MemberIDExists reports whether a member ID is already taken
	MemberIDExists(ctx context.Context, memberID string) (bool, error)

	// List retrieves users with filtering and pagination
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)

	// SoftDeleteWithTasks removes every task the user is a party to and
	// marks the user DELETED in one transaction
	SoftDeleteWithTasks(ctx context.Context, id string) (int64, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role       *models.Role
	Status     *models.UserStatus
	SearchTerm string
	Pagination utils.PaginationParams
}
