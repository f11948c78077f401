package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NotDeleted hides soft-deleted tasks.
func NotDeleted() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.is_deleted = ?", false)
	}
}

// VisibleTo restricts tasks to those the principal is a party to. Admin-tier
// principals see everything.
func VisibleTo(p *access.Principal) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAdminTier() {
			return db
		}
		if p == nil {
			return db.Where("1 = 0")
		}
		return db.Where("(tasks.assigned_to_id = ? OR tasks.assigned_by_id = ?)", p.ID, p.ID)
	}
}

func TaskStatusIs(status *models.TaskStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == nil {
			return db
		}
		return db.Where("tasks.status = ?", *status)
	}
}

func TaskPriorityIs(priority *models.TaskPriority) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if priority == nil {
			return db
		}
		return db.Where("tasks.priority = ?", *priority)
	}
}

// PartyMatches keeps tasks whose user in column (assigned_to_id or
// assigned_by_id) has a name or email containing term, ignoring case.
func PartyMatches(column, term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		users := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.User{}).
			Select("users.id").
			Scopes(UserSearch(term))
		return db.Where("tasks."+column+" IN (?)", users)
	}
}

// UserSearch matches users whose name or email contains term, ignoring case.
func UserSearch(term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		return db.Where("(LOWER(users.name) LIKE ? ESCAPE '!' OR LOWER(users.email) LIKE ? ESCAPE '!')", like, like)
	}
}

func UserRoleIs(role *models.Role) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if role == nil {
			return db
		}
		return db.Where("users.role = ?", *role)
	}
}

func UserStatusIs(status *models.UserStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == nil {
			return db
		}
		return db.Where("users.status = ?", *status)
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
