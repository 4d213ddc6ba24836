package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
)

// RequireRoles creates a middleware that rejects requests whose authenticated
// user does not hold one of the allowed roles. Must run after AuthMiddleware.
func RequireRoles(allowedRoles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}
