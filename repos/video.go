package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*models.Video) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Video, error)
	GetDetail(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Video, error)
	// ListByCourse returns the course's videos in unlock order.
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, withTests bool) ([]models.Video, error)
	NextPosition(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int, error)
	Update(ctx context.Context, tx *gorm.DB, courseID, id uuid.UUID, fields map[string]interface{}) (int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	IDsByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]uuid.UUID, error)
	// FilterByCourse keeps only the ids that belong to courseID.
	FilterByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	TitlesByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]string, error)
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, rows []*models.Video) error {
	if len(rows) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Omit("Test").Create(&rows).Error
}

func (r *videoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Video, error) {
	return firstOrNil(conn(ctx, r.db, tx).Where("id = ?", id), &models.Video{})
}

func (r *videoRepo) GetDetail(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Video, error) {
	q := conn(ctx, r.db, tx).
		Preload("Test").
		Preload("Test.Questions", orderQuestions).
		Preload("Test.Challenge").
		Where("id = ?", id)
	return firstOrNil(q, &models.Video{})
}

func (r *videoRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, withTests bool) ([]models.Video, error) {
	q := conn(ctx, r.db, tx).Where("course_id = ?", courseID)
	if withTests {
		q = q.Preload("Test").Preload("Test.Questions", orderQuestions).Preload("Test.Challenge")
	}
	var videos []models.Video
	if err := orderVideos(q).Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) NextPosition(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int, error) {
	var next int
	err := conn(ctx, r.db, tx).Model(&models.Video{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error
	return next, err
}

func (r *videoRepo) Update(ctx context.Context, tx *gorm.DB, courseID, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&models.Video{}).
		Where("id = ? AND course_id = ?", id, courseID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *videoRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Where("id IN ?", ids).Delete(&models.Video{}).Error
}

func (r *videoRepo) IDsByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db, tx).Model(&models.Video{}).Where("course_id = ?", courseID).Pluck("id", &ids).Error
	return ids, err
}

func (r *videoRepo) FilterByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(ids) == 0 {
		return out, nil
	}
	err := conn(ctx, r.db, tx).Model(&models.Video{}).
		Where("course_id = ? AND id IN ?", courseID, ids).
		Pluck("id", &out).Error
	return out, err
}

func (r *videoRepo) TitlesByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]string, error) {
	titles := []string{}
	err := orderVideos(conn(ctx, r.db, tx).Model(&models.Video{}).Where("course_id = ?", courseID)).
		Pluck("title", &titles).Error
	return titles, err
}
