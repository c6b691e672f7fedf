package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

type EnrollmentRepo interface {
	Exists(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, row *models.Enrollment) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]models.Enrollment, error)
	ListUsersByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]models.User, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error)
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) Exists(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, row *models.Enrollment) error {
	return conn(ctx, r.db, tx).Omit("User", "Course").Create(row).Error
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]models.Enrollment, error) {
	var rows []models.Enrollment
	err := conn(ctx, r.db, tx).
		Preload("Course").
		Preload("Course.Category").
		Preload("Course.Instructor").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *enrollmentRepo) ListUsersByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	err := conn(ctx, r.db, tx).
		Model(&models.User{}).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id = ?", courseID).
		Order("enrollments.enrolled_at ASC").
		Select("users.*").
		Find(&users).Error
	return users, err
}

func (r *enrollmentRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	return conn(ctx, r.db, tx).Where("course_id = ?", courseID).Delete(&models.Enrollment{}).Error
}
