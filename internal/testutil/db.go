// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database. The pool is pinned to one
// connection because every ":memory:" connection gets its own database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log, _ := test.NewNullLogger()
	require.NoError(t, database.Migrate(db, log))

	return db
}

var memberSeq = 100000

// CreateUser inserts an ACTIVE user with a unique member ID.
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	memberSeq++
	user := &models.User{
		MemberID:     fmt.Sprintf("%06d", memberSeq),
		Email:        email,
		Name:         email,
		PasswordHash: "hashedpassword",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTask inserts a task from assigner to assignee. createdAt orders list
// results deterministically.
func CreateTask(t *testing.T, db *gorm.DB, title string, assignee, assigner *models.User, createdAt time.Time) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:        title,
		Status:       models.TaskStatusTodo,
		Priority:     models.TaskPriorityMedium,
		AssignedToID: assignee.ID,
		AssignedByID: assigner.ID,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(task).Error)
	return task
}
