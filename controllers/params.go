package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/middleware"
	"github.com/vnkhanh/e-course-backend/services"
)

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apierr.InvalidInput("invalid " + name)
	}
	return id, nil
}

// bindJSON decodes and validates the body. Decoder errors are logged and replaced with a
// fixed message; validation failures name the offending field.
func bindJSON(c *gin.Context, log *logger.Logger, out interface{}) error {
	err := c.ShouldBindJSON(out)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return services.ValidationError(err)
	}
	log.Debug("malformed request body", "path", c.FullPath(), "error", err)
	return apierr.InvalidInput("invalid request body")
}

func viewer(c *gin.Context) (services.Viewer, error) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		return services.Viewer{}, apierr.Unauthorized("authentication required")
	}
	return services.Viewer{UserID: userID, IsAdmin: middleware.IsAdmin(c)}, nil
}

func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apierr.InvalidInput(name + " must be a number")
	}
	return &v, nil
}

func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apierr.InvalidInput(name + " must be an integer")
	}
	return &v, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	v, err := queryInt64(c, name)
	if err != nil || v == nil {
		return 0, err
	}
	return int(*v), nil
}
