package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key under which the authenticated actor
// identity is stored. Identity verification itself is owned by the gateway;
// this service only requires the attribution header to be present on
// mutations so audit records name a responsible operator.
const ActorKey = "actor"

const actorHeader = "X-Actor-Id"

// RequireActor rejects mutation requests that carry no actor identity.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(actorHeader)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + actorHeader + " header for audit attribution",
			})
			return
		}
		c.Set(ActorKey, actor)
		c.Next()
	}
}

// Actor returns the actor identity attached by RequireActor.
func Actor(c *gin.Context) string {
	return c.GetString(ActorKey)
}
