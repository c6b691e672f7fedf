package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/response"
	"github.com/vnkhanh/e-course-backend/services"
)

type VideoHandler struct {
	videos   services.VideoService
	progress services.ProgressService
	tests    services.TestService
	log      *logger.Logger
}

func NewVideoHandler(videos services.VideoService, progress services.ProgressService, tests services.TestService, log *logger.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, progress: progress, tests: tests, log: log}
}

// GET /api/videos/:id
func (h *VideoHandler) GetVideoDetails(c *gin.Context) {
	v, err := viewer(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	videoID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	details, err := h.videos.Details(c.Request.Context(), v, videoID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, details)
}

// POST /api/videos/:id/watched
func (h *VideoHandler) MarkWatched(c *gin.Context) {
	v, err := viewer(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	videoID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	progress, err := h.progress.MarkWatched(c.Request.Context(), v.UserID, videoID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"progress": progress})
}

// POST /api/videos/:id/test
func (h *VideoHandler) SubmitTest(c *gin.Context) {
	v, err := viewer(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	videoID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	var input struct {
		Answers []services.Answer `json:"answers"`
	}
	if err := bindJSON(c, h.log, &input); err != nil {
		response.Error(c, h.log, err)
		return
	}
	result, err := h.tests.Submit(c.Request.Context(), v.UserID, videoID, input.Answers)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, result)
}

// GET /api/videos/:id/attempts
func (h *VideoHandler) ListAttempts(c *gin.Context) {
	v, err := viewer(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	videoID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	attempts, err := h.tests.ListAttempts(c.Request.Context(), v.UserID, videoID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"attempts": attempts})
}

// PUT /api/admin/courses/:id/videos
func (h *VideoHandler) ManageVideos(c *gin.Context) {
	courseID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	var in services.ManageVideosInput
	if err := bindJSON(c, h.log, &in); err != nil {
		response.Error(c, h.log, err)
		return
	}
	res, err := h.videos.ManageVideos(c.Request.Context(), courseID, in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, res)
}

// PUT /api/admin/videos/:id/tests
func (h *VideoHandler) ManageTests(c *gin.Context) {
	videoID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	var in services.ManageTestsInput
	if err := bindJSON(c, h.log, &in); err != nil {
		response.Error(c, h.log, err)
		return
	}
	test, err := h.tests.ManageTests(c.Request.Context(), videoID, in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"test": test})
}
