package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Error writes the error envelope for err and aborts the chain. Internal and dependency
// causes are logged, never sent.
func Error(c *gin.Context, log *logger.Logger, err error) {
	kind := apierr.KindOf(err)
	status := apierr.Status(kind)
	if log != nil && (kind == apierr.KindInternal || kind == apierr.KindDependencyFailure) {
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"kind", string(kind),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: apierr.PublicMessage(err), Code: string(kind)},
	})
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
