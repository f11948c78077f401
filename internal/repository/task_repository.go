package repository

import (
	"context"

	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

var taskRelations = []string{"AssignedTo", "AssignedBy"}

func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a live task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx).Scopes(database.NotDeleted())

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *GormTaskRepository) FindVisible(ctx context.Context, id string, viewer *access.Principal) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx).Scopes(database.NotDeleted(), database.VisibleTo(viewer))
	for _, p := range taskRelations {
		query = query.Preload(p)
	}

	if err := query.Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves one page of the tasks visible to filter.Viewer together with
// the total number of matches.
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	tasks := []models.Task{}
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Task{}).Scopes(
			database.NotDeleted(),
			database.VisibleTo(filter.Viewer),
			database.TaskStatusIs(filter.Status),
			database.TaskPriorityIs(filter.Priority),
			database.PartyMatches("assigned_to_id", filter.AssignedTo),
			database.PartyMatches("assigned_by_id", filter.AssignedBy),
		)

		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return err
		}

		listQuery := query.Session(&gorm.Session{}).
			Order("tasks.created_at DESC").
			Scopes(database.Paginate(filter.Pagination))
		for _, p := range taskRelations {
			listQuery = listQuery.Preload(p)
		}
		return listQuery.Find(&tasks).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

func (r *GormTaskRepository) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
