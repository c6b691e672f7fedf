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

type VideoUpdateInput struct {
	ID uuid.UUID `json:"id" binding:"required"`
	VideoInput
}

// ManageVideosInput is applied in one transaction: removals, then additions, then
// updates. Added videos go to the end of the course.
type ManageVideosInput struct {
	Add    []VideoInput       `json:"add_videos" binding:"dive"`
	Update []VideoUpdateInput `json:"update_videos" binding:"dive"`
	Remove []uuid.UUID        `json:"remove_video_ids"`
}

type VideosResult struct {
	Videos   []models.Video `json:"videos"`
	Warnings []SyncWarning  `json:"warnings"`
}

type VideoDetails struct {
	Video    VideoWithUnlock  `json:"video"`
	Progress *models.Progress `json:"progress"`
}

type VideoService interface {
	ManageVideos(ctx context.Context, courseID uuid.UUID, in ManageVideosInput) (*VideosResult, error)
	Details(ctx context.Context, viewer Viewer, videoID uuid.UUID) (*VideoDetails, error)
}

type videoService struct {
	db       *gorm.DB
	repos    repos.Set
	progress ProgressService
	indexer  CourseIndexer
	log      *logger.Logger
}

func NewVideoService(db *gorm.DB, rs repos.Set, progress ProgressService, indexer CourseIndexer, baseLog *logger.Logger) VideoService {
	return &videoService{
		db:       db,
		repos:    rs,
		progress: progress,
		indexer:  indexer,
		log:      baseLog.With("service", "VideoService"),
	}
}

func (s *videoService) ManageVideos(ctx context.Context, courseID uuid.UUID, in ManageVideosInput) (*VideosResult, error) {
	if len(in.Add) == 0 && len(in.Update) == 0 && len(in.Remove) == 0 {
		return nil, apierr.InvalidInput("nothing to change")
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	removing := make(map[uuid.UUID]bool, len(in.Remove))
	for _, id := range in.Remove {
		removing[id] = true
	}
	updateIDs := make([]uuid.UUID, 0, len(in.Update))
	for _, v := range in.Update {
		if v.Test != nil {
			return nil, apierr.InvalidInput("tests of existing videos are changed through manage tests")
		}
		if removing[v.ID] {
			return nil, apierr.InvalidInput("cannot update and remove the same video")
		}
		updateIDs = append(updateIDs, v.ID)
	}

	course, err := s.repos.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, apierr.Internal("load course", err)
	}
	if course == nil {
		return nil, apierr.NotFound("course not found")
	}
	for _, ids := range [][]uuid.UUID{in.Remove, updateIDs} {
		if err := s.requireOwned(ctx, courseID, ids); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := removeVideos(ctx, tx, s.repos, in.Remove); err != nil {
			return err
		}
		if len(in.Add) > 0 {
			next, err := s.repos.Videos.NextPosition(ctx, tx, courseID)
			if err != nil {
				return err
			}
			rows := make([]*models.Video, 0, len(in.Add))
			for i, v := range in.Add {
				rows = append(rows, v.model(courseID, next+i))
			}
			if err := s.repos.Videos.Create(ctx, tx, rows); err != nil {
				return err
			}
			for i, v := range in.Add {
				if v.Test == nil {
					continue
				}
				if err := s.repos.Tests.Create(ctx, tx, v.Test.model(rows[i].ID)); err != nil {
					return err
				}
			}
		}
		for _, v := range in.Update {
			if _, err := s.repos.Videos.Update(ctx, tx, courseID, v.ID, v.fields()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apierr.Internal("manage videos", err)
	}

	videos, err := s.repos.Videos.ListByCourse(ctx, nil, courseID, true)
	if err != nil {
		return nil, apierr.Internal("list videos", err)
	}
	s.log.Info("videos changed", "course_id", courseID, "added", len(in.Add), "updated", len(in.Update), "removed", len(in.Remove))

	warn := s.indexer.SyncVideos(ctx, courseID)
	return &VideosResult{Videos: videos, Warnings: Warnings(warn)}, nil
}

// Details returns one video with the viewer's progress and whether the video is
// unlocked for them.
func (s *videoService) Details(ctx context.Context, viewer Viewer, videoID uuid.UUID) (*VideoDetails, error) {
	video, err := s.repos.Videos.GetByID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.Internal("load video", err)
	}
	if video == nil {
		return nil, apierr.NotFound("video not found")
	}
	videos, err := s.repos.Videos.ListByCourse(ctx, nil, video.CourseID, true)
	if err != nil {
		return nil, apierr.Internal("list videos", err)
	}
	progress, err := s.progress.ListProgressForCourse(ctx, viewer.UserID, video.CourseID)
	if err != nil {
		return nil, err
	}

	out := &VideoDetails{}
	for _, v := range ComputeUnlocks(videos, progress) {
		if v.ID == videoID {
			out.Video = v
			break
		}
	}
	if p, ok := progress[videoID]; ok {
		out.Progress = &p
	}
	if !viewer.IsAdmin {
		HideAnswers(out.Video.Test)
	}
	return out, nil
}

func (s *videoService) requireOwned(ctx context.Context, courseID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	owned, err := s.repos.Videos.FilterByCourse(ctx, nil, courseID, ids)
	if err != nil {
		return apierr.Internal("check videos", err)
	}
	if len(owned) != len(uniqueIDs(ids)) {
		return apierr.NotFound("video not found in this course")
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
