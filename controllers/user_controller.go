package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/response"
	"github.com/vnkhanh/e-course-backend/services"
)

type UserHandler struct {
	svc services.UserService
	log *logger.Logger
}

func NewUserHandler(svc services.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := bindJSON(c, h.log, &in); err != nil {
		response.Error(c, h.log, err)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, gin.H{"user": user})
}
