package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title        string       `gorm:"type:varchar(255);not null" json:"title"`
	Description  *string      `gorm:"type:text" json:"description"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	DueDate      *time.Time   `json:"due_date"`
	AssignedToID string       `gorm:"type:varchar(36);not null;index" json:"assigned_to_id"`
	AssignedByID string       `gorm:"type:varchar(36);not null;index" json:"assigned_by_id"`
	IsDeleted    bool         `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	AssignedTo User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	AssignedBy User `gorm:"foreignKey:AssignedByID" json:"assigned_by,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
