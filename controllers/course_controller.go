package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/response"
	"github.com/vnkhanh/e-course-backend/search"
	"github.com/vnkhanh/e-course-backend/services"
)

type CourseHandler struct {
	courses services.CourseService
	indexer services.CourseIndexer
	log     *logger.Logger
}

func NewCourseHandler(courses services.CourseService, indexer services.CourseIndexer, log *logger.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, indexer: indexer, log: log}
}

// POST /api/admin/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	v, err := viewer(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	var in services.CourseInput
	if err := bindJSON(c, h.log, &in); err != nil {
		response.Error(c, h.log, err)
		return
	}
	res, err := h.courses.Create(c.Request.Context(), v.UserID, in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, res)
}

// PUT /api/admin/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	var in services.CourseInput
	if err := bindJSON(c, h.log, &in); err != nil {
		response.Error(c, h.log, err)
		return
	}
	res, err := h.courses.Update(c.Request.Context(), courseID, in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, res)
}

// DELETE /api/admin/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	warnings, err := h.courses.Delete(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"deleted": courseID, "warnings": warnings})
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourseDetails(c *gin.Context) {
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
	details, err := h.courses.Details(c.Request.Context(), v, courseID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"course": details})
}

// GET /api/courses/:id/videos
func (h *CourseHandler) ListCourseVideos(c *gin.Context) {
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
	videos, err := h.courses.Videos(c.Request.Context(), v, courseID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"videos": videos})
}

// GET /api/courses/search?q=&category=&min_price=&max_price=&sort_by=&order=&size=
func (h *CourseHandler) SearchCourses(c *gin.Context) {
	q := search.CourseQuery{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("category")),
		SortBy:   c.Query("sort_by"),
		Order:    c.Query("order"),
	}
	var err error
	if q.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		response.Error(c, h.log, err)
		return
	}
	if q.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		response.Error(c, h.log, err)
		return
	}
	if q.Size, err = queryInt(c, "size"); err != nil {
		response.Error(c, h.log, err)
		return
	}

	hits, err := h.indexer.Search(c.Request.Context(), q)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"courses": hits, "count": len(hits)})
}

// POST /api/admin/search/reindex
func (h *CourseHandler) ReindexCourses(c *gin.Context) {
	n, err := h.indexer.RebuildAll(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"reindexed": n})
}
