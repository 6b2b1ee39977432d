package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitkuhar/kitkuhar/backend/internal/identity"
)

const callerKey = "caller"

// ResolveIdentity attaches the request's Caller to the gin context. Requests
// without a valid token are treated as anonymous visitors, never rejected.
func ResolveIdentity(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"), c.ClientIP(), c.Request.UserAgent())
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the resolved Caller. Without ResolveIdentity upstream it
// derives an anonymous caller from the request itself.
func CallerFrom(c *gin.Context) identity.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(identity.Caller); ok {
			return caller
		}
	}
	return identity.NewAnonymous(identity.SessionToken(c.ClientIP(), c.Request.UserAgent()))
}

// AuthMiddleware rejects anonymous callers
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CallerFrom(c).IsAuthenticated() {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if !caller.IsAuthenticated() {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
			return
		}
		if !caller.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "admin privileges required"})
			return
		}
		c.Next()
	}
}
