package repos

import (
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/logger"
)

// Set bundles every repo so services can be wired from one value.
type Set struct {
	Users       UserRepo
	Categories  CategoryRepo
	Courses     CourseRepo
	Videos      VideoRepo
	Tests       TestRepo
	Progress    ProgressRepo
	Enrollments EnrollmentRepo
	Communities CommunityRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Users:       NewUserRepo(db, log),
		Categories:  NewCategoryRepo(db, log),
		Courses:     NewCourseRepo(db, log),
		Videos:      NewVideoRepo(db, log),
		Tests:       NewTestRepo(db, log),
		Progress:    NewProgressRepo(db, log),
		Enrollments: NewEnrollmentRepo(db, log),
		Communities: NewCommunityRepo(db, log),
	}
}
