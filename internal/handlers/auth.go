package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/constants"
	"github.com/yukikurage/workboard-api/internal/dto"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService   *services.AuthService
	secureCookies bool
	log           logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler. secureCookies selects
// Secure+SameSite=None cookies for cross-site production deployments.
func NewAuthHandler(authService *services.AuthService, secureCookies bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		log:           log,
	}
}

// LoginResponse is returned by a successful login. Tokens travel only in
// the httpOnly cookies.
type LoginResponse struct {
	User dto.UserDTO `json:"user"`
}

// Signup registers a new user. The route is restricted to admins.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email    string      `json:"email" binding:"required,email"`
		Password string      `json:"password" binding:"required,min=6"`
		Name     string      `json:"name" binding:"max=255"`
		Phone    string      `json:"phone" binding:"max=32"`
		Role     models.Role `json:"role"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("User registered successfully", dto.ToUserDTO(*user)))
}

// Login authenticates a user and sets the token cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	tokens := h.authService.Tokens()
	h.setTokenCookie(c, constants.AccessTokenCookie, result.AccessToken, tokens.AccessTTL())
	h.setTokenCookie(c, constants.RefreshTokenCookie, result.RefreshToken, tokens.RefreshTTL())

	c.JSON(http.StatusOK, dto.OK("Login successful", LoginResponse{
		User: dto.ToUserDTO(*result.User),
	}))
}

// RefreshToken mints a new access token from the refresh token cookie, or
// from a refresh_token field in the body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(constants.RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if c.Request.ContentLength > 0 {
			_ = c.ShouldBindJSON(&body)
		}
		refreshToken = body.RefreshToken
	}

	accessToken, err := h.authService.RefreshAccess(c.Request.Context(), refreshToken)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.setTokenCookie(c, constants.AccessTokenCookie, accessToken, h.authService.Tokens().AccessTTL())
	c.JSON(http.StatusOK, dto.OK("Access token refreshed", nil))
}

// Logout clears both token cookies. Issued tokens stay valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, constants.AccessTokenCookie, "", -1)
	h.setTokenCookie(c, constants.RefreshTokenCookie, "", -1)

	c.JSON(http.StatusOK, dto.OK("Logged out successfully", nil))
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), principal.ID)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("", dto.ToUserDTO(*user)))
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, name, value string, maxAge time.Duration) {
	sameSite := http.SameSiteLaxMode
	if h.secureCookies {
		sameSite = http.SameSiteNoneMode
	}
	age := -1
	if maxAge > 0 {
		age = int(maxAge.Seconds())
	}

	c.SetSameSite(sameSite)
	c.SetCookie(name, value, age, "/", "", h.secureCookies, true)
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "User with this email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, services.ErrTokenMissing):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenMissing, "Refresh token not provided")
	case errors.Is(err, services.ErrTokenExpired):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenExpired, "Refresh token expired")
	case errors.Is(err, services.ErrTokenInvalid):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenInvalid, "Invalid refresh token")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		h.log.WithError(err).Error("auth request failed")
		apierrors.InternalError(c, "")
	}
}
