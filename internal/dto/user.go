package dto

import (
	"time"

	"github.com/yukikurage/workboard-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           string            `json:"id"`
	MemberID     string            `json:"member_id"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	Role         models.Role       `json:"role"`
	Status       models.UserStatus `json:"status"`
	ProfilePhoto *string           `json:"profile_photo"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// UserSummaryDTO is the compact form embedded in tasks
type UserSummaryDTO struct {
	ID       string `json:"id"`
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:           user.ID,
		MemberID:     user.MemberID,
		Email:        user.Email,
		Name:         user.Name,
		Phone:        user.Phone,
		Role:         user.Role,
		Status:       user.Status,
		ProfilePhoto: user.ProfilePhoto,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}

// ToUserSummaryDTO returns nil when the relation was not preloaded
func ToUserSummaryDTO(user models.User) *UserSummaryDTO {
	if user.ID == "" {
		return nil
	}
	return &UserSummaryDTO{
		ID:       user.ID,
		MemberID: user.MemberID,
		Name:     user.Name,
		Email:    user.Email,
	}
}

// DeletedUserDTO reports the outcome of a user deletion
type DeletedUserDTO struct {
	User         UserDTO `json:"user"`
	TasksRemoved int64   `json:"tasks_removed"`
}
