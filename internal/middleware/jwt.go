package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yug49/multi-tenant-event-booking-system/internal/auth"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
)

const (
	// ContextUserID is the key for the authenticated user id in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for the authenticated email in gin context.
	ContextUserEmail = "user_email"
	// ContextOrganizationID is the key for the caller's tenant in gin context.
	ContextOrganizationID = "organization_id"
)

// JWT returns a middleware that validates the bearer token and sets the
// caller's identity in context.
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
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextOrganizationID, claims.OrganizationID)
		c.Next()
	}
}
