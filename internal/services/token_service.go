package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/workboard-api/internal/models"
)

var (
	ErrTokenMissing = errors.New("token not provided")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims is the payload carried by both access and refresh tokens.
// The subject is the user ID.
type SessionClaims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenService.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService mints and verifies HS256 session tokens. Access and refresh
// tokens are signed with different secrets, so one kind is never accepted in
// place of the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for iat/exp and expiry checks.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) MintAccess(userID, email string, role models.Role) (string, error) {
	return s.sign(userID, email, role, s.accessSecret, s.accessTTL)
}

func (s *TokenService) MintRefresh(userID, email string, role models.Role) (string, error) {
	return s.sign(userID, email, role, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) VerifyAccess(token string) (*SessionClaims, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefresh(token string) (*SessionClaims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(userID, email string, role models.Role, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) verify(token string, secret []byte) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
