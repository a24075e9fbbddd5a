package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/utils"
	"github.com/taskboard/backend/pkg/response"
)

const ContextUserID = "user_id"

// BearerToken extracts the token from "Authorization: Bearer <token>".
// It returns "" when the header is missing or malformed.
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// streamToken also accepts ?token= since EventSource and browser WebSocket
// clients cannot set headers.
func streamToken(c *gin.Context) string {
	if token := BearerToken(c); token != "" {
		return token
	}
	return c.Query("token")
}

func authenticate(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(BearerToken(c))
		if !ok {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// StreamAuthRequired is AuthRequired for SSE and WebSocket endpoints.
func StreamAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(streamToken(c))
		if !ok {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalAuth records the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := authenticate(BearerToken(c)); ok {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

// GetUserID returns the caller id, or "" for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
