package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
)

type ProgressService interface {
	GetProgress(ctx context.Context, userID, videoID uuid.UUID) (*models.Progress, error)
	// MarkWatched records that userID finished videoID. Repeating it keeps the first
	// completion time.
	MarkWatched(ctx context.Context, userID, videoID uuid.UUID) (*models.Progress, error)
	// MarkTestCompleted fails with not_found unless the user already has a progress row
	// for the video.
	MarkTestCompleted(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID) error
	// ResetTests clears every user's test_completed flag on videoID; used when its test
	// is removed.
	ResetTests(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error
	ListProgressForCourse(ctx context.Context, userID, courseID uuid.UUID) (map[uuid.UUID]models.Progress, error)
}

type progressService struct {
	progress repos.ProgressRepo
	videos   repos.VideoRepo
	notify   ProgressNotifier
	log      *logger.Logger
	now      func() time.Time
}

func NewProgressService(progress repos.ProgressRepo, videos repos.VideoRepo, notify ProgressNotifier, baseLog *logger.Logger) ProgressService {
	return &progressService{
		progress: progress,
		videos:   videos,
		notify:   notify,
		log:      baseLog.With("service", "ProgressService"),
		now:      time.Now,
	}
}

func (s *progressService) GetProgress(ctx context.Context, userID, videoID uuid.UUID) (*models.Progress, error) {
	p, err := s.progress.Get(ctx, nil, userID, videoID)
	if err != nil {
		return nil, apierr.Internal("load progress", err)
	}
	return p, nil
}

func (s *progressService) MarkWatched(ctx context.Context, userID, videoID uuid.UUID) (*models.Progress, error) {
	video, err := s.videos.GetByID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.Internal("load video", err)
	}
	if video == nil {
		return nil, apierr.NotFound("video not found")
	}

	p, err := s.progress.UpsertWatched(ctx, nil, userID, videoID, s.now().UTC())
	if err != nil {
		return nil, apierr.Internal("save progress", err)
	}
	s.log.Debug("video watched", "user_id", userID, "video_id", videoID)
	if s.notify != nil {
		s.notify.VideoWatched(userID, video)
	}
	return p, nil
}

func (s *progressService) MarkTestCompleted(ctx context.Context, tx *gorm.DB, userID, videoID uuid.UUID) error {
	p, err := s.progress.Get(ctx, tx, userID, videoID)
	if err != nil {
		return apierr.Internal("load progress", err)
	}
	if p == nil {
		return apierr.NotFound("watch the video before taking its test")
	}
	if p.TestCompleted {
		return nil
	}
	n, err := s.progress.MarkTestCompleted(ctx, tx, p.ID)
	if err != nil {
		return apierr.Internal("save progress", err)
	}
	if n == 0 {
		return apierr.NotFound("progress not found")
	}
	return nil
}

func (s *progressService) ResetTests(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error {
	if err := s.progress.ResetTestCompleted(ctx, tx, videoID); err != nil {
		return apierr.Internal("reset test progress", err)
	}
	return nil
}

func (s *progressService) ListProgressForCourse(ctx context.Context, userID, courseID uuid.UUID) (map[uuid.UUID]models.Progress, error) {
	rows, err := s.progress.ListForCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, apierr.Internal("load course progress", err)
	}
	out := make(map[uuid.UUID]models.Progress, len(rows))
	for _, p := range rows {
		out[p.VideoID] = p
	}
	return out, nil
}
