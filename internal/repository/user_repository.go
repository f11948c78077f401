package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCascadeTasks is returned when removing a user's tasks fails inside the deletion transaction.
	ErrCascadeTasks = errors.New("user repository: delete tasks failed")
	// ErrMarkDeleted is returned when flagging the user fails inside the deletion transaction.
	ErrMarkDeleted = errors.New("user repository: mark user deleted failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) MemberIDExists(ctx context.Context, memberID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("member_id = ?", memberID).Count(&count).Error
	return count > 0, err
}

// List runs the page query and the count in one transaction so both see the
// same snapshot.
func (r *GormUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	users := []models.User{}
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.User{}).Scopes(
			database.UserRoleIs(filter.Role),
			database.UserStatusIs(filter.Status),
			database.UserSearch(filter.SearchTerm),
		)

		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return err
		}

		return query.Session(&gorm.Session{}).
			Order("users.created_at DESC").
			Scopes(database.Paginate(filter.Pagination)).
			Find(&users).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SoftDeleteWithTasks hard-deletes every task where the user is assignee or
// assigner and sets the user's status to DELETED. Either both happen or
// neither does. It returns the number of tasks removed.
func (r *GormUserRepository) SoftDeleteWithTasks(ctx context.Context, id string) (int64, error) {
	var removed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("assigned_to_id = ? OR assigned_by_id = ?", id, id).Delete(&models.Task{})
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrCascadeTasks, result.Error)
		}
		removed = result.RowsAffected

		result = tx.Model(&models.User{}).Where("id = ?", id).Update("status", models.UserStatusDeleted)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrMarkDeleted, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}
