package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/observability"
	"github.com/yukikurage/workboard-api/internal/services"
)

// Authenticator resolves an access token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*access.Principal, error)
}

// RequireAuth verifies the access token from the accessToken cookie, falling
// back to an Authorization: Bearer header, and stores the principal in the
// context.
func RequireAuth(auth Authenticator, metrics *observability.Metrics, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := auth.Authenticate(c.Request.Context(), accessToken(c))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenMissing):
				metrics.ObserveAuthFailure("missing")
				apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenMissing, "Access token not provided")
			case errors.Is(err, services.ErrTokenExpired):
				metrics.ObserveAuthFailure("expired")
				apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenExpired, "Access token expired")
			case errors.Is(err, services.ErrTokenInvalid):
				metrics.ObserveAuthFailure("invalid")
				apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenInvalid, "Invalid access token")
			default:
				log.WithError(err).Error("authentication failed")
				apierrors.InternalError(c, "")
			}
			return
		}

		c.Set(constants.ContextKeyPrincipal, principal)
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(constants.AccessTokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetPrincipal retrieves the authenticated caller from context
func GetPrincipal(c *gin.Context) (*access.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*access.Principal)
	return principal, ok && principal != nil
}
