package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
)

// Viewer is the authenticated caller a read is rendered for.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type CourseResult struct {
	Course   *models.Course `json:"course"`
	Warnings []SyncWarning  `json:"warnings"`
}

type CourseDetails struct {
	*models.Course
	Videos []VideoWithUnlock `json:"videos"`
}

type CourseService interface {
	Create(ctx context.Context, instructorID uuid.UUID, in CourseInput) (*CourseResult, error)
	// Update replaces the course fields; the price is kept when in.Price is nil. Videos
	// are managed through VideoService.
	Update(ctx context.Context, courseID uuid.UUID, in CourseInput) (*CourseResult, error)
	Delete(ctx context.Context, courseID uuid.UUID) ([]SyncWarning, error)
	Details(ctx context.Context, viewer Viewer, courseID uuid.UUID) (*CourseDetails, error)
	Videos(ctx context.Context, viewer Viewer, courseID uuid.UUID) ([]VideoWithUnlock, error)
}

type courseService struct {
	db       *gorm.DB
	repos    repos.Set
	progress ProgressService
	indexer  CourseIndexer
	log      *logger.Logger
}

func NewCourseService(db *gorm.DB, rs repos.Set, progress ProgressService, indexer CourseIndexer, baseLog *logger.Logger) CourseService {
	return &courseService{
		db:       db,
		repos:    rs,
		progress: progress,
		indexer:  indexer,
		log:      baseLog.With("service", "CourseService"),
	}
}

func (s *courseService) Create(ctx context.Context, instructorID uuid.UUID, in CourseInput) (*CourseResult, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Thumbnail:      in.Thumbnail,
		CourseContents: append([]string{}, in.CourseContents...),
		CategoryID:     in.CategoryID,
		InstructorID:   instructorID,
	}
	if in.Price != nil {
		course.Price = *in.Price
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Courses.Create(ctx, tx, course); err != nil {
			return err
		}
		videos := make([]*models.Video, 0, len(in.Videos))
		for i, v := range in.Videos {
			videos = append(videos, v.model(course.ID, i))
		}
		if err := s.repos.Videos.Create(ctx, tx, videos); err != nil {
			return err
		}
		for i, v := range in.Videos {
			if v.Test == nil {
				continue
			}
			if err := s.repos.Tests.Create(ctx, tx, v.Test.model(videos[i].ID)); err != nil {
				return err
			}
		}
		return s.repos.Communities.Create(ctx, tx, &models.Community{
			CourseID:      course.ID,
			CommunityName: course.Title + " Community",
		})
	})
	if err != nil {
		return nil, apierr.Internal("create course", err)
	}

	detail, err := s.repos.Courses.GetDetail(ctx, nil, course.ID)
	if err != nil || detail == nil {
		return nil, apierr.Internal("reload course", err)
	}
	s.log.Info("course created", "course_id", course.ID, "videos", len(in.Videos))

	warn := s.indexer.SyncCreated(ctx, detail)
	return &CourseResult{Course: detail, Warnings: Warnings(warn)}, nil
}

func (s *courseService) Update(ctx context.Context, courseID uuid.UUID, in CourseInput) (*CourseResult, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	existing, err := s.repos.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, apierr.Internal("load course", err)
	}
	if existing == nil {
		return nil, apierr.NotFound("course not found")
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	price := existing.Price
	if in.Price != nil {
		price = *in.Price
	}
	fields := map[string]interface{}{
		"title":           strings.TrimSpace(in.Title),
		"description":     strings.TrimSpace(in.Description),
		"thumbnail":       in.Thumbnail,
		"course_contents": jsonStrings(in.CourseContents),
		"category_id":     in.CategoryID,
		"price":           price,
	}
	if err := s.repos.Courses.Update(ctx, nil, courseID, fields); err != nil {
		return nil, apierr.Internal("update course", err)
	}

	detail, err := s.repos.Courses.GetDetail(ctx, nil, courseID)
	if err != nil || detail == nil {
		return nil, apierr.Internal("reload course", err)
	}
	warn := s.indexer.SyncUpdated(ctx, detail)
	return &CourseResult{Course: detail, Warnings: Warnings(warn)}, nil
}

func (s *courseService) Delete(ctx context.Context, courseID uuid.UUID) ([]SyncWarning, error) {
	existing, err := s.repos.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, apierr.Internal("load course", err)
	}
	if existing == nil {
		return nil, apierr.NotFound("course not found")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		videoIDs, err := s.repos.Videos.IDsByCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if err := removeVideos(ctx, tx, s.repos, videoIDs); err != nil {
			return err
		}
		if err := s.repos.Enrollments.DeleteByCourse(ctx, tx, courseID); err != nil {
			return err
		}
		if err := s.repos.Communities.DeleteByCourse(ctx, tx, courseID); err != nil {
			return err
		}
		return s.repos.Courses.Delete(ctx, tx, courseID)
	})
	if err != nil {
		return nil, apierr.Internal("delete course", err)
	}
	s.log.Info("course deleted", "course_id", courseID)

	return Warnings(s.indexer.SyncDeleted(ctx, courseID)), nil
}

func (s *courseService) Details(ctx context.Context, viewer Viewer, courseID uuid.UUID) (*CourseDetails, error) {
	var (
		course   *models.Course
		progress map[uuid.UUID]models.Progress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		course, err = s.repos.Courses.GetDetail(gctx, nil, courseID)
		if err != nil {
			return apierr.Internal("load course", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		progress, err = s.progress.ListProgressForCourse(gctx, viewer.UserID, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apierr.NotFound("course not found")
	}

	videos := ComputeUnlocks(course.Videos, progress)
	if !viewer.IsAdmin {
		for i := range videos {
			HideAnswers(videos[i].Test)
		}
	}
	return &CourseDetails{Course: course, Videos: videos}, nil
}

func (s *courseService) Videos(ctx context.Context, viewer Viewer, courseID uuid.UUID) ([]VideoWithUnlock, error) {
	course, err := s.repos.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, apierr.Internal("load course", err)
	}
	if course == nil {
		return nil, apierr.NotFound("course not found")
	}
	videos, err := s.repos.Videos.ListByCourse(ctx, nil, courseID, true)
	if err != nil {
		return nil, apierr.Internal("list videos", err)
	}
	progress, err := s.progress.ListProgressForCourse(ctx, viewer.UserID, courseID)
	if err != nil {
		return nil, err
	}
	out := ComputeUnlocks(videos, progress)
	for i := range out {
		// the list view never carries test content
		out[i].Test = nil
	}
	return out, nil
}

func (s *courseService) requireCategory(ctx context.Context, id uuid.UUID) error {
	cat, err := s.repos.Categories.GetByID(ctx, nil, id)
	if err != nil {
		return apierr.Internal("load category", err)
	}
	if cat == nil {
		return apierr.NotFound("category not found")
	}
	return nil
}

// removeVideos deletes videos with everything hanging off them.
func removeVideos(ctx context.Context, tx *gorm.DB, rs repos.Set, videoIDs []uuid.UUID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	if err := rs.Progress.DeleteByVideoIDs(ctx, tx, videoIDs); err != nil {
		return err
	}
	if err := rs.Tests.DeleteAttemptsByVideoIDs(ctx, tx, videoIDs); err != nil {
		return err
	}
	testIDs, err := rs.Tests.IDsByVideoIDs(ctx, tx, videoIDs)
	if err != nil {
		return err
	}
	if err := rs.Tests.DeleteByIDs(ctx, tx, testIDs); err != nil {
		return err
	}
	return rs.Videos.DeleteByIDs(ctx, tx, videoIDs)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
