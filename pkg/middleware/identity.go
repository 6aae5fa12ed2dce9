package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/internal/auth"
	"github.com/stagepass/trust-safety/pkg/common"
)

const (
	// UserIDHeader is set by the platform gateway after authentication
	UserIDHeader = "X-User-ID"
	// UserRoleHeader carries the gateway-asserted role
	UserRoleHeader = "X-User-Role"

	actorContextKey = "actor"
)

// Identity extracts the authenticated caller from gateway headers. Token
// verification happens upstream; requests reaching this service are trusted
// to carry a valid identity.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader(UserIDHeader))
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "missing or invalid caller identity")
			c.Abort()
			return
		}

		c.Set(actorContextKey, auth.Actor{
			ID:   userID,
			Role: auth.ParseRole(c.GetHeader(UserRoleHeader)),
		})

		c.Next()
	}
}

// GetActor returns the caller identity stored by the Identity middleware
func GetActor(c *gin.Context) (auth.Actor, error) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return auth.Actor{}, common.NewUnauthorizedError("caller identity missing")
	}
	actor, ok := v.(auth.Actor)
	if !ok {
		return auth.Actor{}, common.NewUnauthorizedError("caller identity missing")
	}
	return actor, nil
}
