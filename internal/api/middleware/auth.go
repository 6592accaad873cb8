// server/internal/api/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"aayur-gram-api-server/internal/auth"
	"aayur-gram-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextUserName  = "user_name"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.JWTClaims, error)
}

// Authenticate verifies the bearer token and puts the caller's identity into the context.
func Authenticate(tv TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is required"})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format"})
			return
		}

		claims, err := tv.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserName, claims.Name)

		c.Next()
	}
}

// CurrentUser returns the identity stored by Authenticate.
func CurrentUser(c *gin.Context) (auth.Identity, bool) {
	id := c.GetString(ContextUserID)
	role, ok := c.Get(ContextUserRole)
	if id == "" || !ok {
		return auth.Identity{}, false
	}
	r, ok := role.(models.Role)
	if !ok {
		return auth.Identity{}, false
	}
	return auth.Identity{
		ID:    id,
		Email: c.GetString(ContextUserEmail),
		Role:  r,
		Name:  c.GetString(ContextUserName),
	}, true
}

// Authorize is a middleware factory checking the caller's role against a
// fixed allowlist. It must run after Authenticate.
func Authorize(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		for _, role := range allowedRoles {
			if role == user.Role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden: insufficient role"})
	}
}
