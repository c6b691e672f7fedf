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

type TestUpdateInput struct {
	TestID    uuid.UUID       `json:"test_id" binding:"required"`
	Questions []QuestionInput `json:"questions" binding:"dive"`
	Challenge *ChallengeInput `json:"challenge,omitempty"`
}

// ManageTestsInput is applied in one transaction: removal first, then add, then update.
type ManageTestsInput struct {
	Add          *TestInput       `json:"add_test,omitempty"`
	Update       *TestUpdateInput `json:"update_test,omitempty"`
	RemoveTestID *uuid.UUID       `json:"remove_test_id,omitempty"`
}

type TestService interface {
	Submit(ctx context.Context, userID, videoID uuid.UUID, answers []Answer) (*Evaluation, error)
	ManageTests(ctx context.Context, videoID uuid.UUID, in ManageTestsInput) (*models.Test, error)
	ListAttempts(ctx context.Context, userID, videoID uuid.UUID) ([]models.TestAttempt, error)
}

type testService struct {
	db       *gorm.DB
	tests    repos.TestRepo
	videos   repos.VideoRepo
	progress ProgressService
	notify   ProgressNotifier
	log      *logger.Logger
}

func NewTestService(db *gorm.DB, tests repos.TestRepo, videos repos.VideoRepo, progress ProgressService, notify ProgressNotifier, baseLog *logger.Logger) TestService {
	return &testService{
		db:       db,
		tests:    tests,
		videos:   videos,
		progress: progress,
		notify:   notify,
		log:      baseLog.With("service", "TestService"),
	}
}

func (s *testService) Submit(ctx context.Context, userID, videoID uuid.UUID, answers []Answer) (*Evaluation, error) {
	if err := validateAnswers(answers); err != nil {
		return nil, err
	}
	video, err := s.videos.GetByID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.Internal("load video", err)
	}
	if video == nil {
		return nil, apierr.NotFound("video not found")
	}
	test, err := s.tests.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.Internal("load test", err)
	}
	if test == nil || len(test.Questions) == 0 {
		return nil, apierr.NotFound("test not found or has no questions")
	}
	p, err := s.progress.GetProgress(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("watch the video before taking its test")
	}

	eval, err := EvaluateTest(test.Questions, answers)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt := &models.TestAttempt{
			UserID:     userID,
			TestID:     test.ID,
			VideoID:    videoID,
			Score:      eval.Score,
			Total:      eval.Total,
			Percentage: eval.Percentage,
			Passed:     eval.Passed,
		}
		if err := s.tests.CreateAttempt(ctx, tx, attempt); err != nil {
			return apierr.Internal("save attempt", err)
		}
		if !eval.Passed {
			return nil
		}
		return s.progress.MarkTestCompleted(ctx, tx, userID, videoID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("test submitted", "user_id", userID, "video_id", videoID, "percentage", eval.Percentage, "passed", eval.Passed)
	if eval.Passed && s.notify != nil {
		s.notify.TestPassed(userID, video, eval)
	}
	return &eval, nil
}

func (s *testService) ManageTests(ctx context.Context, videoID uuid.UUID, in ManageTestsInput) (*models.Test, error) {
	if in.Add == nil && in.Update == nil && in.RemoveTestID == nil {
		return nil, apierr.InvalidInput("nothing to change")
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.Update != nil {
		if in.RemoveTestID != nil && *in.RemoveTestID == in.Update.TestID {
			return nil, apierr.InvalidInput("cannot update and remove the same test")
		}
	}

	video, err := s.videos.GetByID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.Internal("load video", err)
	}
	if video == nil {
		return nil, apierr.NotFound("video not found")
	}
	current, err := s.tests.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.Internal("load test", err)
	}

	owned := func(id uuid.UUID) bool { return current != nil && current.ID == id }
	if in.RemoveTestID != nil && !owned(*in.RemoveTestID) {
		return nil, apierr.NotFound("test not found for this video")
	}
	if in.Update != nil && !owned(in.Update.TestID) {
		return nil, apierr.NotFound("test not found for this video")
	}
	if in.Add != nil && current != nil && in.RemoveTestID == nil {
		return nil, apierr.Conflict("video already has a test")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.RemoveTestID != nil {
			if err := s.tests.DeleteAttemptsByVideoIDs(ctx, tx, []uuid.UUID{videoID}); err != nil {
				return err
			}
			if err := s.tests.DeleteByIDs(ctx, tx, []uuid.UUID{*in.RemoveTestID}); err != nil {
				return err
			}
			if err := s.progress.ResetTests(ctx, tx, videoID); err != nil {
				return err
			}
		}
		if in.Add != nil {
			if err := s.tests.Create(ctx, tx, in.Add.model(videoID)); err != nil {
				return err
			}
		}
		if in.Update != nil {
			for _, q := range in.Update.Questions {
				row := q.model(in.Update.TestID, 0)
				if err := s.tests.UpsertQuestion(ctx, tx, &row); err != nil {
					return err
				}
			}
			if c := in.Update.Challenge; c != nil {
				if err := s.tests.UpsertChallenge(ctx, tx, in.Update.TestID, c.Description); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, apierr.Conflict("video already has a test")
		}
		return nil, apierr.Internal("manage tests", err)
	}

	test, err := s.tests.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.Internal("reload test", err)
	}
	return test, nil
}

func (s *testService) ListAttempts(ctx context.Context, userID, videoID uuid.UUID) ([]models.TestAttempt, error) {
	attempts, err := s.tests.ListAttempts(ctx, nil, userID, videoID)
	if err != nil {
		return nil, apierr.Internal("list attempts", err)
	}
	return attempts, nil
}
