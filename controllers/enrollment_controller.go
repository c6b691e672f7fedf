package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/response"
	"github.com/vnkhanh/e-course-backend/services"
)

type EnrollmentHandler struct {
	svc services.EnrollmentService
	log *logger.Logger
}

func NewEnrollmentHandler(svc services.EnrollmentService, log *logger.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{svc: svc, log: log}
}

// POST /api/courses/:id/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	v, err := viewer(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	res, err := h.svc.Enroll(c.Request.Context(), v.UserID, courseID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, res)
}

// GET /api/enrollments
func (h *EnrollmentHandler) ListEnrolled(c *gin.Context) {
	v, err := viewer(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	rows, err := h.svc.ListEnrolled(c.Request.Context(), v.UserID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"enrollments": rows})
}

// GET /api/courses/:id/users
func (h *EnrollmentHandler) UsersByCourse(c *gin.Context) {
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	users, err := h.svc.UsersByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"users": users})
}

// GET /api/courses/:id/users/count
func (h *EnrollmentHandler) CountByCourse(c *gin.Context) {
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	n, err := h.svc.CountByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"course_id": courseID, "count": n})
}
