package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Course, error)
	// GetDetail loads instructor, category, community and the ordered videos with their
	// tests, questions and challenges.
	GetDetail(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return conn(ctx, r.db, tx).Omit("Category", "Instructor", "Videos", "Community").Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Course, error) {
	return firstOrNil(conn(ctx, r.db, tx).Where("id = ?", id), &models.Course{})
}

func (r *courseRepo) GetDetail(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Course, error) {
	q := conn(ctx, r.db, tx).
		Preload("Instructor").
		Preload("Category").
		Preload("Community").
		Preload("Videos", orderVideos).
		Preload("Videos.Test").
		Preload("Videos.Test.Questions", orderQuestions).
		Preload("Videos.Test.Challenge").
		Where("id = ?", id)
	return firstOrNil(q, &models.Course{})
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Model(&models.Course{}).Where("id = ?", id).Updates(fields).Error
}

func (r *courseRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return conn(ctx, r.db, tx).Where("id = ?", id).Delete(&models.Course{}).Error
}

func (r *courseRepo) ListIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := conn(ctx, r.db, tx).Model(&models.Course{}).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func orderVideos(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}
