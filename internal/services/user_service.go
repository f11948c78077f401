package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/constants"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/observability"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/storage"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUserForbidden        = errors.New("you do not have permission to access this user")
	ErrUserDeleteForbidden  = errors.New("only admins can delete users")
	ErrRoleChangeForbidden  = errors.New("only admins can change role or status")
	ErrInvalidUserStatus    = errors.New("invalid user status")
	ErrStatusTransition     = errors.New("status cannot be changed to or from DELETED; delete the user or sign them up again")
	ErrInvalidImage         = errors.New("profile image must be a png or jpeg of at most 5MB")
	ErrStorageUnavailable   = errors.New("image storage is not configured")
	ErrImageUploadFailed    = errors.New("failed to upload profile image")
	ErrProfileUpdateFailed  = errors.New("failed to update profile image")
	ErrUserDeleteIncomplete = errors.New("failed to delete user")
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// UserService manages user records after registration: listing, profile
// edits, profile images and deletion.
type UserService struct {
	userRepo  repository.UserRepository
	hasher    *utils.PasswordHasher
	store     storage.ObjectStore
	keyPrefix string
	metrics   *observability.Metrics
	log       logrus.FieldLogger
}

// NewUserService creates a new UserService. store and metrics may be nil.
func NewUserService(userRepo repository.UserRepository, hasher *utils.PasswordHasher, store storage.ObjectStore, keyPrefix string, metrics *observability.Metrics, log logrus.FieldLogger) *UserService {
	if keyPrefix == "" {
		keyPrefix = constants.ProfileImagePrefix
	}
	return &UserService{
		userRepo:  userRepo,
		hasher:    hasher,
		store:     store,
		keyPrefix: keyPrefix,
		metrics:   metrics,
		log:       log,
	}
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	Role       *models.Role
	Status     *models.UserStatus
	SearchTerm string
	Pagination utils.PaginationParams
}

// UserPatch carries the fields to change; nil means leave as is.
type UserPatch struct {
	Email    *string
	Password *string
	Name     *string
	Phone    *string
	Role     *models.Role
	Status   *models.UserStatus
}

// ImageUpload is a profile image read from the request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) ([]models.User, int64, error) {
	if input.Role != nil && !input.Role.Valid() {
		return nil, 0, ErrInvalidRole
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidUserStatus
	}

	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		Role:       input.Role,
		Status:     input.Status,
		SearchTerm: strings.TrimSpace(input.SearchTerm),
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns a user to an admin-tier viewer or to the user themself.
func (s *UserService) GetUser(ctx context.Context, viewer *access.Principal, id string) (*models.User, error) {
	if !viewer.CanAccessUser(id) {
		return nil, ErrUserForbidden
	}
	return s.findUser(ctx, id)
}

// UpdateUser applies a patch to a user. Users may edit themselves; role and
// status changes need an admin-tier actor.
func (s *UserService) UpdateUser(ctx context.Context, actor *access.Principal, id string, patch UserPatch) (*models.User, error) {
	if !actor.CanAccessUser(id) {
		return nil, ErrUserForbidden
	}
	if (patch.Role != nil || patch.Status != nil) && !actor.IsAdminTier() {
		return nil, ErrRoleChangeForbidden
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, ErrInvalidUserStatus
		}
		// DELETED is entered only through SoftDeleteUser, which also removes
		// the user's tasks, and left only through Register.
		if (*patch.Status == models.UserStatusDeleted) != (user.Status == models.UserStatusDeleted) {
			return nil, ErrStatusTransition
		}
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}
	if patch.Password != nil {
		if len(*patch.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = hashed
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = *patch.Role
	}
	if patch.Status != nil {
		user.Status = *patch.Status
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// SoftDeleteUser marks the target DELETED and hard-deletes every task it
// assigned or received, atomically. It returns the updated user and the
// number of tasks removed.
func (s *UserService) SoftDeleteUser(ctx context.Context, targetID string, requesterRole models.Role) (*models.User, int64, error) {
	if !access.IsAdminTier(requesterRole) {
		return nil, 0, ErrUserDeleteForbidden
	}

	if _, err := s.findUser(ctx, targetID); err != nil {
		return nil, 0, err
	}

	removed, err := s.userRepo.SoftDeleteWithTasks(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrUserNotFound
		}
		s.log.WithError(err).WithField("user_id", targetID).Error("user deletion rolled back")
		return nil, 0, fmt.Errorf("%w: %v", ErrUserDeleteIncomplete, err)
	}

	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, 0, err
	}

	s.metrics.ObserveUserDeleted(removed)
	s.log.WithFields(logrus.Fields{"user_id": targetID, "tasks_removed": removed}).Info("user deleted")
	return user, removed, nil
}

// UpdateProfileImage stores a new profile image and points the user at it.
// The old image is removed only after the user is saved, and only on a best
// effort basis.
func (s *UserService) UpdateProfileImage(ctx context.Context, actor *access.Principal, id string, image ImageUpload) (*models.User, error) {
	if !actor.CanAccessUser(id) {
		return nil, ErrUserForbidden
	}
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if !allowedImageTypes[strings.ToLower(image.ContentType)] || len(image.Data) == 0 || len(image.Data) > constants.MaxProfileImageBytes {
		return nil, ErrInvalidImage
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.store.Upload(ctx, storage.ObjectKey(s.keyPrefix, user.ID, image.Filename), image.Data, image.ContentType)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("profile image upload failed")
		return nil, ErrImageUploadFailed
	}

	previous := user.ProfilePhotoKey
	user.ProfilePhoto = &uploaded.URL
	user.ProfilePhotoKey = uploaded.Key
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("failed to save profile image")
		s.removeObject(ctx, user.ID, uploaded.Key, "failed to remove unsaved profile image")
		return nil, ErrProfileUpdateFailed
	}

	if previous != "" {
		s.removeObject(ctx, user.ID, previous, "failed to delete old profile image")
	}

	return user, nil
}

// removeObject deletes a stored object, logging instead of failing.
func (s *UserService) removeObject(ctx context.Context, userID, key, msg string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "key": key}).Warn(msg)
	}
}

func (s *UserService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
