package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/repos"
	"github.com/vnkhanh/e-course-backend/response"
	"github.com/vnkhanh/e-course-backend/utils"
)

const (
	ctxUserID  = "user_id"
	ctxIsAdmin = "is_admin"
)

// AuthMiddleware verifies the bearer token and checks that its user still exists.
// The admin flag is read from the user row, not from the token.
func AuthMiddleware(secret string, users repos.UserRepo, log *logger.Logger) gin.HandlerFunc {
	log = log.With("middleware", "AuthMiddleware")
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Error(c, nil, apierr.Unauthorized("missing Authorization header"))
			return
		}

		_, userID, err := utils.VerifyToken(secret, tokenString)
		if err != nil {
			log.Debug("rejected token", "error", err)
			response.Error(c, nil, apierr.Unauthorized("invalid or expired token"))
			return
		}

		user, err := users.GetByID(c.Request.Context(), nil, userID)
		if err != nil {
			response.Error(c, log, apierr.Internal("load user", err))
			return
		}
		if user == nil {
			response.Error(c, nil, apierr.Unauthorized("user not found"))
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxIsAdmin, user.IsAdmin)
		c.Next()
	}
}

// extractToken accepts "Authorization: Bearer <token>", the X-Auth-Token header, or a
// token query parameter for websocket clients that cannot set headers.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		header = c.GetHeader("X-Auth-Token")
	}
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// CurrentUser returns the authenticated caller set by AuthMiddleware.
func CurrentUser(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsAdmin)
}
