package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
)

// userIDKey is the key used to store the authenticated user's ID in the request context.
const userIDKey = contextKey("userID")

// userKey is the key used to store the resolved authenticated user.
const userKey = contextKey("user")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok
}

// GetUserFromContext retrieves the authenticated user resolved by
// AuthMiddleware. The stored copy never carries the password hash.
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	user, ok := c.Request.Context().Value(userKey).(*domain.User)
	return user, ok
}
