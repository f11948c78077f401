package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleMember     Role = "MEMBER"
	RoleLeader     Role = "LEADER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleLeader, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
	UserStatusDeleted UserStatus = "DELETED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusBlocked, UserStatusDeleted:
		return true
	}
	return false
}

type User struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MemberID        string     `gorm:"type:varchar(6);uniqueIndex;not null" json:"member_id"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name            string     `gorm:"type:varchar(255)" json:"name"`
	Phone           string     `gorm:"type:varchar(32)" json:"phone"`
	PasswordHash    string     `gorm:"type:varchar(255);not null" json:"-"`
	Role            Role       `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	Status          UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	ProfilePhoto    *string    `gorm:"type:varchar(1024)" json:"profile_photo"`
	ProfilePhotoKey string     `gorm:"type:varchar(512)" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	AssignedTasks []Task `gorm:"foreignKey:AssignedToID" json:"-"`
	CreatedTasks  []Task `gorm:"foreignKey:AssignedByID" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
