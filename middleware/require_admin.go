package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/response"
)

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Error(c, nil, apierr.Unauthorized("authentication required"))
			return
		}
		if !IsAdmin(c) {
			response.Error(c, nil, apierr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}
