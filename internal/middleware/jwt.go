package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/assembleia-vote/backend/internal/auth"
	"github.com/assembleia-vote/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextUserName is the key for user display name in gin context.
	ContextUserName = "user_name"
	// ContextMunicipalityID is the key for the user's municipality (nil for admins).
	ContextMunicipalityID = "municipality_id"
)

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserName, claims.Name)
		c.Set(ContextMunicipalityID, claims.MunicipalityID)
		c.Next()
	}
}
