package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/dto"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         logrus.FieldLogger
}

func NewTaskHandler(taskService *services.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// ListTasks returns the caller's visible tasks.
// Query: status, priority, assignedTo, assignedBy, page, limit.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	input := services.ListTasksInput{
		AssignedTo: c.Query("assignedTo"),
		AssignedBy: c.Query("assignedBy"),
		Pagination: params,
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		input.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := models.TaskPriority(raw)
		input.Priority = &priority
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), principal, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Page("", dto.ToTaskDTOs(tasks), params.Meta(total)))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("", dto.ToTaskDTO(*task)))
}

// CreateTask creates a task assigned by the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title        string              `json:"title" binding:"required,max=255"`
		Description  *string             `json:"description"`
		Status       models.TaskStatus   `json:"status"`
		Priority     models.TaskPriority `json:"priority"`
		DueDate      *time.Time          `json:"due_date"`
		AssignedToID string              `json:"assigned_to_id" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), principal, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("Task created successfully", dto.ToTaskDTO(*task)))
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateTaskRequest struct {
		Title        *string              `json:"title"`
		Description  *string              `json:"description"`
		Status       *models.TaskStatus   `json:"status"`
		Priority     *models.TaskPriority `json:"priority"`
		DueDate      *time.Time           `json:"due_date"`
		ClearDueDate bool                 `json:"clear_due_date"`
		AssignedToID *string              `json:"assigned_to_id"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), principal, c.Param("id"), services.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Task updated successfully", dto.ToTaskDTO(*task)))
}

// DeleteTask soft-deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), principal, c.Param("id")); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Task deleted successfully", nil))
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c, "Assigned user not found")
	case errors.Is(err, services.ErrTaskForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority):
		apierrors.BadRequest(c, err.Error())
	default:
		h.log.WithError(err).Error("task request failed")
		apierrors.InternalError(c, "")
	}
}
