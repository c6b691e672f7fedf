package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/controllers"
	"github.com/vnkhanh/e-course-backend/middleware"
)

// Handlers groups everything SetupRouter mounts.
type Handlers struct {
	Health     *controllers.HealthHandler
	Users      *controllers.UserHandler
	Categories *controllers.CategoryHandler
	Courses    *controllers.CourseHandler
	Videos     *controllers.VideoHandler
	Enrollment *controllers.EnrollmentHandler
	ProgressWS gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, h Handlers, authMW gin.HandlerFunc) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", h.Health.HealthCheck)
	r.GET("/ws/progress", authMW, h.ProgressWS)

	api := r.Group("/api")

	api.POST("/users/register", h.Users.Register)
	api.GET("/categories", h.Categories.ListCategories)
	api.GET("/courses/search", h.Courses.SearchCourses)

	user := api.Group("")
	user.Use(authMW)
	{
		user.GET("/courses/:id", h.Courses.GetCourseDetails)
		user.GET("/courses/:id/videos", h.Courses.ListCourseVideos)
		user.POST("/courses/:id/enroll", h.Enrollment.Enroll)
		user.GET("/courses/:id/users", h.Enrollment.UsersByCourse)
		user.GET("/courses/:id/users/count", h.Enrollment.CountByCourse)
		user.GET("/enrollments", h.Enrollment.ListEnrolled)

		user.GET("/videos/:id", h.Videos.GetVideoDetails)
		user.POST("/videos/:id/watched", h.Videos.MarkWatched)
		user.POST("/videos/:id/test", h.Videos.SubmitTest)
		user.GET("/videos/:id/attempts", h.Videos.ListAttempts)

		user.GET("/communities", h.Categories.ListCommunities)
		user.GET("/communities/search", h.Categories.SearchCommunities)
	}

	admin := api.Group("/admin")
	admin.Use(authMW, middleware.RequireAdmin())
	{
		admin.POST("/categories", h.Categories.CreateCategory)

		admin.POST("/courses", h.Courses.CreateCourse)
		admin.PUT("/courses/:id", h.Courses.UpdateCourse)
		admin.DELETE("/courses/:id", h.Courses.DeleteCourse)
		admin.PUT("/courses/:id/videos", h.Videos.ManageVideos)
		admin.PUT("/videos/:id/tests", h.Videos.ManageTests)

		admin.POST("/search/reindex", h.Courses.ReindexCourses)
	}

	return r
}
