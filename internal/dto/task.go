package dto

import (
	"time"

	"github.com/yukikurage/workboard-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	DueDate      *time.Time          `json:"due_date"`
	AssignedToID string              `json:"assigned_to_id"`
	AssignedByID string              `json:"assigned_by_id"`
	AssignedTo   *UserSummaryDTO     `json:"assigned_to,omitempty"`
	AssignedBy   *UserSummaryDTO     `json:"assigned_by,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		AssignedToID: task.AssignedToID,
		AssignedByID: task.AssignedByID,
		AssignedTo:   ToUserSummaryDTO(task.AssignedTo),
		AssignedBy:   ToUserSummaryDTO(task.AssignedBy),
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
