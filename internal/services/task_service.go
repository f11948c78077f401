package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskForbidden       = errors.New("you do not have permission to access this task")
	ErrAssigneeNotFound    = errors.New("assigned user not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	log      logrus.FieldLogger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, log logrus.FieldLogger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		log:      log,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssignedTo string
	AssignedBy string
	Pagination utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  *string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	DueDate      *time.Time
	AssignedToID string
}

// TaskPatch carries the fields to change; nil means leave as is.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	AssignedToID *string
}

// ListTasks returns the page of tasks the viewer may see. Admin-tier viewers
// see every live task; everyone else only tasks they assigned or received.
func (s *TaskService) ListTasks(ctx context.Context, viewer *access.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, 0, ErrInvalidTaskPriority
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Viewer:     viewer,
		Status:     input.Status,
		Priority:   input.Priority,
		AssignedTo: strings.TrimSpace(input.AssignedTo),
		AssignedBy: strings.TrimSpace(input.AssignedBy),
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task the viewer may see. A task that exists but is
// outside the viewer's visibility yields ErrTaskForbidden rather than
// ErrTaskNotFound.
func (s *TaskService) GetTask(ctx context.Context, viewer *access.Principal, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindVisible(ctx, taskID, viewer)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.taskRepo.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return nil, ErrTaskForbidden
}

// CreateTask creates a task assigned by creator. The assignee must exist.
func (s *TaskService) CreateTask(ctx context.Context, creator *access.Principal, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	if err := s.ensureUserExists(ctx, input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        title,
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		AssignedToID: input.AssignedToID,
		AssignedByID: creator.ID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": task.ID, "assigned_to": task.AssignedToID, "assigned_by": task.AssignedByID}).Info("task created")
	return s.taskRepo.FindByID(ctx, task.ID, taskPreloads...)
}

// UpdateTask applies a patch. Only the task's creator or an admin-tier actor
// may change it.
func (s *TaskService) UpdateTask(ctx context.Context, actor *access.Principal, taskID string, patch TaskPatch) (*models.Task, error) {
	task, err := s.loadForMutation(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *patch.Priority
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.AssignedToID != nil && *patch.AssignedToID != task.AssignedToID {
		if err := s.ensureUserExists(ctx, *patch.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = *patch.AssignedToID
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(ctx, task.ID, taskPreloads...)
}

// DeleteTask soft-deletes a task. Only the task's creator or an admin-tier
// actor may delete it.
func (s *TaskService) DeleteTask(ctx context.Context, actor *access.Principal, taskID string) error {
	if _, err := s.loadForMutation(ctx, actor, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.SoftDelete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": taskID, "actor": actor.ID}).Info("task deleted")
	return nil
}

var taskPreloads = []string{"AssignedTo", "AssignedBy"}

func (s *TaskService) loadForMutation(ctx context.Context, actor *access.Principal, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !actor.CanMutateTask(task) {
		return nil, ErrTaskForbidden
	}
	return task, nil
}

func (s *TaskService) ensureUserExists(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrAssigneeNotFound
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	return nil
}
