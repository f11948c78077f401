package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/constants"
	"github.com/yukikurage/workboard-api/internal/dto"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
	log         logrus.FieldLogger
}

func NewUserHandler(userService *services.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

// ListUsers returns users filtered by role, status and searchTerm.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	input := services.ListUsersInput{
		SearchTerm: c.Query("searchTerm"),
		Pagination: params,
	}
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		input.Role = &role
	}
	if raw := c.Query("status"); raw != "" {
		status := models.UserStatus(raw)
		input.Status = &status
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), input)
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Page("", dto.ToUserDTOs(users), params.Meta(total)))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("", dto.ToUserDTO(*user)))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateUserRequest struct {
		Email    *string            `json:"email" binding:"omitempty,email"`
		Password *string            `json:"password" binding:"omitempty,min=6"`
		Name     *string            `json:"name" binding:"omitempty,max=255"`
		Phone    *string            `json:"phone" binding:"omitempty,max=32"`
		Role     *models.Role       `json:"role"`
		Status   *models.UserStatus `json:"status"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), principal, c.Param("id"), services.UserPatch{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("User updated successfully", dto.ToUserDTO(*user)))
}

// DeleteUser marks a user DELETED and removes every task they are a party to.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, removed, err := h.userService.SoftDeleteUser(c.Request.Context(), c.Param("id"), principal.Role)
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("User deleted successfully", dto.DeletedUserDTO{
		User:         dto.ToUserDTO(*user),
		TasksRemoved: removed,
	}))
}

// UpdateProfileImage replaces the user's profile image with the multipart
// "image" field.
func (h *UserHandler) UpdateProfileImage(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxProfileImageBytes+(1<<20))
	header, err := c.FormFile("image")
	if err != nil {
		apierrors.BadRequest(c, "Profile image file is required")
		return
	}
	if header.Size > constants.MaxProfileImageBytes {
		apierrors.BadRequest(c, services.ErrInvalidImage.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "Unable to read profile image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxProfileImageBytes+1))
	if err != nil {
		apierrors.BadRequest(c, "Unable to read profile image")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	user, err := h.userService.UpdateProfileImage(c.Request.Context(), principal, c.Param("id"), services.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Profile image updated successfully", dto.ToUserDTO(*user)))
}

func (h *UserHandler) respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrUserForbidden),
		errors.Is(err, services.ErrUserDeleteForbidden),
		errors.Is(err, services.ErrRoleChangeForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "User with this email already exists")
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidUserStatus),
		errors.Is(err, services.ErrStatusTransition),
		errors.Is(err, services.ErrInvalidImage):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrStorageUnavailable):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrImageUploadFailed),
		errors.Is(err, services.ErrProfileUpdateFailed):
		apierrors.InternalError(c, err.Error())
	default:
		h.log.WithError(err).Error("user request failed")
		apierrors.InternalError(c, "")
	}
}
