package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

type ProgressRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID) (*models.Progress, error)
	// UpsertWatched creates or completes the (user, video) row in one statement. The
	// first completion time is kept on repeat calls.
	UpsertWatched(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID, at time.Time) (*models.Progress, error)
	// MarkTestCompleted returns the number of rows matched; zero means no progress row.
	MarkTestCompleted(ctx context.Context, tx *gorm.DB, progressID uuid.UUID) (int64, error)
	ListForCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]models.Progress, error)
	// ResetTestCompleted clears test_completed for every user of the video.
	ResetTestCompleted(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error
	DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Get(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID) (*models.Progress, error) {
	return firstOrNil(conn(ctx, r.db, tx).Where("user_id = ? AND video_id = ?", userID, videoID), &models.Progress{})
}

func (r *progressRepo) UpsertWatched(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID, at time.Time) (*models.Progress, error) {
	db := conn(ctx, r.db, tx)
	row := &models.Progress{
		UserID:      userID,
		VideoID:     videoID,
		Completed:   true,
		CompletedAt: &at,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed":    true,
			"completed_at": gorm.Expr("COALESCE(completed_at, ?)", at),
			"updated_at":   at,
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return firstOrNil(db.Where("user_id = ? AND video_id = ?", userID, videoID), &models.Progress{})
}

func (r *progressRepo) MarkTestCompleted(ctx context.Context, tx *gorm.DB, progressID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&models.Progress{}).
		Where("id = ?", progressID).
		Update("test_completed", true)
	return res.RowsAffected, res.Error
}

func (r *progressRepo) ListForCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]models.Progress, error) {
	db := conn(ctx, r.db, tx)
	videoIDs := db.Session(&gorm.Session{NewDB: true}).Model(&models.Video{}).Select("id").Where("course_id = ?", courseID)

	var rows []models.Progress
	err := db.Where("user_id = ? AND video_id IN (?)", userID, videoIDs).Find(&rows).Error
	return rows, err
}

func (r *progressRepo) ResetTestCompleted(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error {
	return conn(ctx, r.db, tx).Model(&models.Progress{}).
		Where("video_id = ? AND test_completed = ?", videoID, true).
		Update("test_completed", false).Error
}

func (r *progressRepo) DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Where("video_id IN ?", videoIDs).Delete(&models.Progress{}).Error
}
