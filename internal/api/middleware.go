package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/loadlane/loadlane/pkg/errors"
	"github.com/loadlane/loadlane/pkg/response"
)

const userIDKey = "user_id"

// requireUser reads the caller identity forwarded by the upstream gateway.
// Authentication itself happens there; this service only needs the id.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
