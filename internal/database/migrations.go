package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/models"
	"gorm.io/gorm"
)

type compositeIndex struct {
	model   interface{}
	name    string
	columns string
}

// AddIndexes creates the composite indexes backing the task list queries.
// Single-column indexes come from struct tags; these cover the visibility
// filter combined with the soft-delete flag and the default ordering.
func AddIndexes(db *gorm.DB, log logrus.FieldLogger) error {
	indexes := []compositeIndex{
		{&models.Task{}, "idx_tasks_deleted_assigned_to", "is_deleted, assigned_to_id"},
		{&models.Task{}, "idx_tasks_deleted_assigned_by", "is_deleted, assigned_by_id"},
		{&models.Task{}, "idx_tasks_deleted_created_at", "is_deleted, created_at"},
		{&models.User{}, "idx_users_role_status", "role, status"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithField("index", idx.name).Info("Created index")
	}

	return nil
}
