package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/access"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/observability"
)

// RequireRoles enforces a resolved route policy. It must run after
// RequireAuth. Build it once per route at startup.
func RequireRoles(policy access.Policy, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		if err := policy.Check(principal.Role); err != nil {
			metrics.ObserveAuthzDenial(string(principal.Role))
			apierrors.Forbidden(c, err.Error())
			return
		}

		c.Next()
	}
}
