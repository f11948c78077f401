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
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidRole          = errors.New("invalid role")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrMemberIDExhausted    = errors.New("could not allocate a unique member id")
)

// AuthService issues, rotates and verifies credentials.
type AuthService struct {
	userRepo    repository.UserRepository
	hasher      *utils.PasswordHasher
	tokens      *TokenService
	metrics     *observability.Metrics
	log         logrus.FieldLogger
	newMemberID func() (string, error)
}

// NewAuthService creates a new AuthService. metrics may be nil.
func NewAuthService(userRepo repository.UserRepository, hasher *utils.PasswordHasher, tokens *TokenService, metrics *observability.Metrics, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		hasher:      hasher,
		tokens:      tokens,
		metrics:     metrics,
		log:         log,
		newMemberID: utils.GenerateMemberID,
	}
}

// Tokens exposes the token service for cookie lifetimes.
func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

// RegisterInput represents the information needed to create or revive an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     models.Role
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. An email held by a DELETED user is revived in
// place, keeping its ID and member ID; any other existing email conflicts.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil && existing.Status != models.UserStatusDeleted {
		s.metrics.ObserveRegistration(observability.OutcomeConflict)
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	if existing != nil {
		return s.reactivate(ctx, existing, hashed, input, role)
	}

	for attempt := 1; attempt <= constants.MemberIDMaxAttempts; attempt++ {
		memberID, err := s.newMemberID()
		if err != nil {
			return nil, err
		}

		taken, err := s.userRepo.MemberIDExists(ctx, memberID)
		if err != nil {
			return nil, fmt.Errorf("failed to check member id: %w", err)
		}
		if taken {
			continue
		}

		user := &models.User{
			MemberID:     memberID,
			Email:        email,
			Name:         strings.TrimSpace(input.Name),
			Phone:        strings.TrimSpace(input.Phone),
			PasswordHash: hashed,
			Role:         role,
			Status:       models.UserStatusActive,
		}

		err = s.userRepo.Create(ctx, user)
		if err == nil {
			s.metrics.ObserveRegistration(observability.OutcomeCreated)
			s.log.WithFields(logrus.Fields{"user_id": user.ID, "member_id": user.MemberID}).Info("user registered")
			return user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.metrics.ObserveRegistration(observability.OutcomeError)
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		// The unique index decides: either the email was registered
		// concurrently or the member ID collided after the pre-check.
		if _, ferr := s.userRepo.FindByEmail(ctx, email); ferr == nil {
			s.metrics.ObserveRegistration(observability.OutcomeConflict)
			return nil, ErrEmailTaken
		} else if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", ferr)
		}
		s.log.WithField("attempt", attempt).Warn("member id collision, retrying")
	}

	s.metrics.ObserveRegistration(observability.OutcomeError)
	return nil, ErrMemberIDExhausted
}

func (s *AuthService) reactivate(ctx context.Context, user *models.User, hashed string, input RegisterInput, role models.Role) (*models.User, error) {
	user.PasswordHash = hashed
	user.Name = strings.TrimSpace(input.Name)
	user.Phone = strings.TrimSpace(input.Phone)
	user.Role = role
	user.Status = models.UserStatusActive

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.metrics.ObserveRegistration(observability.OutcomeError)
		return nil, fmt.Errorf("failed to reactivate user: %w", err)
	}

	s.metrics.ObserveRegistration(observability.OutcomeReactivated)
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "member_id": user.MemberID}).Info("user reactivated")
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the freshly minted token pair.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// Login verifies credentials and mints an access/refresh pair. Unknown email
// and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.ObserveLogin(observability.OutcomeFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Verify(input.Password, user.PasswordHash); err != nil {
		s.metrics.ObserveLogin(observability.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.MintAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.MintRefresh(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveLogin(observability.OutcomeSuccess)
	return &LoginResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

// RefreshAccess mints a new access token from a valid refresh token. The
// refresh token itself is not rotated.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.metrics.ObserveRefresh(observability.OutcomeFailure)
		return "", err
	}

	accessToken, err := s.tokens.MintAccess(claims.Subject, claims.Email, claims.Role)
	if err != nil {
		return "", err
	}

	s.metrics.ObserveRefresh(observability.OutcomeSuccess)
	return accessToken, nil
}

// Authenticate verifies an access token and re-resolves the user it names.
// The returned principal reflects the user's current role, not the role
// recorded in the token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*access.Principal, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return access.NewPrincipal(user), nil
}

// EnsureSuperAdmin creates the bootstrap SUPER_ADMIN when no account holds
// email yet. Signup is admin-only, so this is how the first admin appears.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check bootstrap admin: %w", err)
	}

	if _, err := s.Register(ctx, RegisterInput{
		Email:    email,
		Password: password,
		Name:     "Super Admin",
		Role:     models.RoleSuperAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
