package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

type TestRepo interface {
	// Create inserts the test together with its questions and optional challenge.
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Test, error)
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*models.Test, error)
	UpsertQuestion(ctx context.Context, tx *gorm.DB, q *models.Question) error
	UpsertChallenge(ctx context.Context, tx *gorm.DB, testID uuid.UUID, description string) error
	IDsByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) ([]uuid.UUID, error)
	// DeleteByIDs removes the tests with their questions and challenges.
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error

	CreateAttempt(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error
	ListAttempts(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID) ([]models.TestAttempt, error)
	DeleteAttemptsByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error
}

type testRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestRepo(db *gorm.DB, baseLog *logger.Logger) TestRepo {
	return &testRepo{db: db, log: baseLog.With("repo", "TestRepo")}
}

func (r *testRepo) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	return conn(ctx, r.db, tx).Create(test).Error
}

func (r *testRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Test, error) {
	q := conn(ctx, r.db, tx).
		Preload("Questions", orderQuestions).
		Preload("Challenge").
		Where("id = ?", id)
	return firstOrNil(q, &models.Test{})
}

func (r *testRepo) GetByVideoID(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*models.Test, error) {
	q := conn(ctx, r.db, tx).
		Preload("Questions", orderQuestions).
		Preload("Challenge").
		Where("video_id = ?", videoID)
	return firstOrNil(q, &models.Test{})
}

// UpsertQuestion updates the question when q.ID names a question of the same test and
// inserts it under a fresh id otherwise. Updated questions keep their position; inserted
// ones go after the last question of the test.
func (r *testRepo) UpsertQuestion(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	db := conn(ctx, r.db, tx)
	if q.ID != uuid.Nil {
		res := db.Model(&models.Question{}).
			Where("id = ? AND test_id = ?", q.ID, q.TestID).
			Updates(map[string]interface{}{
				"text":           q.Text,
				"options":        q.Options,
				"correct_answer": q.CorrectAnswer,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
	}
	var next int
	if err := db.Model(&models.Question{}).
		Where("test_id = ?", q.TestID).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error; err != nil {
		return err
	}
	q.ID = uuid.Nil
	q.Position = next
	return db.Create(q).Error
}

func (r *testRepo) UpsertChallenge(ctx context.Context, tx *gorm.DB, testID uuid.UUID, description string) error {
	row := &models.Challenge{TestID: testID, Description: description}
	return conn(ctx, r.db, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "test_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"description"}),
	}).Create(row).Error
}

func (r *testRepo) IDsByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(videoIDs) == 0 {
		return ids, nil
	}
	err := conn(ctx, r.db, tx).Model(&models.Test{}).Where("video_id IN ?", videoIDs).Pluck("id", &ids).Error
	return ids, err
}

func (r *testRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	db := conn(ctx, r.db, tx)
	if err := db.Where("test_id IN ?", ids).Delete(&models.Question{}).Error; err != nil {
		return err
	}
	if err := db.Where("test_id IN ?", ids).Delete(&models.Challenge{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&models.Test{}).Error
}

func (r *testRepo) CreateAttempt(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	return conn(ctx, r.db, tx).Create(attempt).Error
}

func (r *testRepo) ListAttempts(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID) ([]models.TestAttempt, error) {
	attempts := []models.TestAttempt{}
	err := conn(ctx, r.db, tx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Order("taken_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *testRepo) DeleteAttemptsByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Where("video_id IN ?", videoIDs).Delete(&models.TestAttempt{}).Error
}
