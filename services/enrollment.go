package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
)

type EnrollResult struct {
	Enrollment *models.Enrollment      `json:"enrollment"`
	Membership *models.CommunityMember `json:"community_membership,omitempty"`
	Warnings   []SyncWarning           `json:"warnings"`
}

type EnrollmentService interface {
	// Enroll links the user to the course and, when the course has one, its community.
	// Both rows are written together or not at all.
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*EnrollResult, error)
	ListEnrolled(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	UsersByCourse(ctx context.Context, courseID uuid.UUID) ([]models.User, error)
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type enrollmentService struct {
	db          *gorm.DB
	courses     repos.CourseRepo
	enrollments repos.EnrollmentRepo
	communities repos.CommunityRepo
	indexer     CourseIndexer
	log         *logger.Logger
}

func NewEnrollmentService(db *gorm.DB, rs repos.Set, indexer CourseIndexer, baseLog *logger.Logger) EnrollmentService {
	return &enrollmentService{
		db:          db,
		courses:     rs.Courses,
		enrollments: rs.Enrollments,
		communities: rs.Communities,
		indexer:     indexer,
		log:         baseLog.With("service", "EnrollmentService"),
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*EnrollResult, error) {
	course, err := s.courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, apierr.Internal("load course", err)
	}
	if course == nil {
		return nil, apierr.NotFound("course not found")
	}
	exists, err := s.enrollments.Exists(ctx, nil, userID, courseID)
	if err != nil {
		return nil, apierr.Internal("check enrollment", err)
	}
	if exists {
		return nil, apierr.Conflict("already enrolled in this course")
	}

	out := &EnrollResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment := &models.Enrollment{UserID: userID, CourseID: courseID}
		if err := s.enrollments.Create(ctx, tx, enrollment); err != nil {
			return err
		}
		out.Enrollment = enrollment

		community, err := s.communities.GetByCourseID(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if community == nil {
			return nil
		}
		member := &models.CommunityMember{CommunityID: community.ID, UserID: userID}
		if err := s.communities.AddMember(ctx, tx, member); err != nil {
			return err
		}
		out.Membership = member
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, apierr.Conflict("already enrolled in this course")
		}
		return nil, apierr.Internal("enroll", err)
	}

	s.log.Info("user enrolled", "user_id", userID, "course_id", courseID)
	out.Warnings = Warnings(s.indexer.SyncEnrollments(ctx, courseID))
	return out, nil
}

func (s *enrollmentService) ListEnrolled(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	rows, err := s.enrollments.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal("list enrollments", err)
	}
	return rows, nil
}

func (s *enrollmentService) UsersByCourse(ctx context.Context, courseID uuid.UUID) ([]models.User, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	users, err := s.enrollments.ListUsersByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, apierr.Internal("list enrolled users", err)
	}
	return users, nil
}

func (s *enrollmentService) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return 0, err
	}
	n, err := s.enrollments.CountByCourse(ctx, nil, courseID)
	if err != nil {
		return 0, apierr.Internal("count enrollments", err)
	}
	return n, nil
}

func (s *enrollmentService) requireCourse(ctx context.Context, courseID uuid.UUID) error {
	course, err := s.courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return apierr.Internal("load course", err)
	}
	if course == nil {
		return apierr.NotFound("course not found")
	}
	return nil
}
