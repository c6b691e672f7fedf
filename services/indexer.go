package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
	"github.com/vnkhanh/e-course-backend/search"
)

// SyncWarning reports that the primary write succeeded but the search index could not be
// brought up to date. The course is queued for a rebuild when this happens.
type SyncWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w *SyncWarning) Error() string { return w.Code + ": " + w.Message }

// Warnings collects the non-nil warnings for a response body.
func Warnings(ws ...*SyncWarning) []SyncWarning {
	out := []SyncWarning{}
	for _, w := range ws {
		if w != nil {
			out = append(out, *w)
		}
	}
	return out
}

type CourseIndexer interface {
	BuildDocument(course *models.Course, enrollments int64) search.CourseDocument
	// SyncCreated expects course to carry its instructor, category and videos.
	SyncCreated(ctx context.Context, course *models.Course) *SyncWarning
	SyncUpdated(ctx context.Context, course *models.Course) *SyncWarning
	SyncVideos(ctx context.Context, courseID uuid.UUID) *SyncWarning
	// SyncEnrollments re-counts the course's enrollments and patches the document.
	SyncEnrollments(ctx context.Context, courseID uuid.UUID) *SyncWarning
	SyncDeleted(ctx context.Context, courseID uuid.UUID) *SyncWarning
	Rebuild(ctx context.Context, courseID uuid.UUID) error
	RebuildAll(ctx context.Context) (int, error)
	Search(ctx context.Context, q search.CourseQuery) ([]search.CourseHit, error)
}

type courseIndexer struct {
	index       search.Index
	queue       ReindexQueue
	courses     repos.CourseRepo
	videos      repos.VideoRepo
	enrollments repos.EnrollmentRepo
	timeout     time.Duration
	log         *logger.Logger
}

// NewCourseIndexer builds an indexer. A nil index turns every sync into a no-op and
// every search into a dependency failure; a nil queue disables retries.
func NewCourseIndexer(index search.Index, queue ReindexQueue, rs repos.Set, timeout time.Duration, baseLog *logger.Logger) CourseIndexer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &courseIndexer{
		index:       index,
		queue:       queue,
		courses:     rs.Courses,
		videos:      rs.Videos,
		enrollments: rs.Enrollments,
		timeout:     timeout,
		log:         baseLog.With("service", "CourseIndexer"),
	}
}

func (ix *courseIndexer) BuildDocument(course *models.Course, enrollments int64) search.CourseDocument {
	titles := make([]string, 0, len(course.Videos))
	for _, v := range course.Videos {
		titles = append(titles, v.Title)
	}
	return search.CourseDocument{
		Title:       course.Title,
		Description: course.Description,
		Instructor:  course.Instructor.FullName(),
		Category:    course.Category.Name,
		Price:       course.Price,
		Videos:      titles,
		Enrollments: enrollments,
	}
}

func (ix *courseIndexer) SyncCreated(ctx context.Context, course *models.Course) *SyncWarning {
	if ix.index == nil {
		return nil
	}
	doc := ix.BuildDocument(course, 0)
	err := ix.call(ctx, func(ctx context.Context) error {
		return ix.index.Put(ctx, course.ID.String(), doc)
	})
	if err != nil {
		return ix.fail(course.ID, "index", err)
	}
	return nil
}

func (ix *courseIndexer) SyncUpdated(ctx context.Context, course *models.Course) *SyncWarning {
	if ix.index == nil {
		return nil
	}
	doc := ix.BuildDocument(course, 0)
	patch := search.CourseDocumentPatch{
		Title:       &doc.Title,
		Description: &doc.Description,
		Instructor:  &doc.Instructor,
		Category:    &doc.Category,
		Price:       &doc.Price,
		Videos:      &doc.Videos,
	}
	err := ix.call(ctx, func(ctx context.Context) error {
		return ix.index.Patch(ctx, course.ID.String(), patch)
	})
	if err != nil {
		return ix.fail(course.ID, "update", err)
	}
	return nil
}

func (ix *courseIndexer) SyncVideos(ctx context.Context, courseID uuid.UUID) *SyncWarning {
	if ix.index == nil {
		return nil
	}
	err := ix.call(ctx, func(ctx context.Context) error {
		titles, err := ix.videos.TitlesByCourse(ctx, nil, courseID)
		if err != nil {
			return fmt.Errorf("load video titles: %w", err)
		}
		return ix.index.Patch(ctx, courseID.String(), search.CourseDocumentPatch{Videos: &titles})
	})
	if err != nil {
		return ix.fail(courseID, "update videos", err)
	}
	return nil
}

func (ix *courseIndexer) SyncEnrollments(ctx context.Context, courseID uuid.UUID) *SyncWarning {
	if ix.index == nil {
		return nil
	}
	err := ix.call(ctx, func(ctx context.Context) error {
		count, err := ix.enrollments.CountByCourse(ctx, nil, courseID)
		if err != nil {
			return fmt.Errorf("count enrollments: %w", err)
		}
		return ix.index.Patch(ctx, courseID.String(), search.CourseDocumentPatch{Enrollments: &count})
	})
	if err != nil {
		return ix.fail(courseID, "update enrollments", err)
	}
	return nil
}

func (ix *courseIndexer) SyncDeleted(ctx context.Context, courseID uuid.UUID) *SyncWarning {
	if ix.index == nil {
		return nil
	}
	err := ix.call(ctx, func(ctx context.Context) error {
		return ix.index.Delete(ctx, courseID.String())
	})
	if err != nil {
		return ix.fail(courseID, "delete", err)
	}
	return nil
}

// Rebuild replaces the course's document with one built from the primary store, or
// removes it when the course no longer exists.
func (ix *courseIndexer) Rebuild(ctx context.Context, courseID uuid.UUID) error {
	if ix.index == nil {
		return errors.New("search index is not configured")
	}
	course, err := ix.courses.GetDetail(ctx, nil, courseID)
	if err != nil {
		return fmt.Errorf("load course %s: %w", courseID, err)
	}
	if course == nil {
		return ix.call(ctx, func(ctx context.Context) error {
			return ix.index.Delete(ctx, courseID.String())
		})
	}
	count, err := ix.enrollments.CountByCourse(ctx, nil, courseID)
	if err != nil {
		return fmt.Errorf("count enrollments %s: %w", courseID, err)
	}
	doc := ix.BuildDocument(course, count)
	return ix.call(ctx, func(ctx context.Context) error {
		return ix.index.Put(ctx, courseID.String(), doc)
	})
}

func (ix *courseIndexer) RebuildAll(ctx context.Context) (int, error) {
	ids, err := ix.courses.ListIDs(ctx, nil)
	if err != nil {
		return 0, apierr.Internal("list courses", err)
	}
	var errs []error
	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := ix.Rebuild(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		done++
	}
	if len(errs) > 0 {
		ix.log.Warn("rebuild incomplete", "rebuilt", done, "total", len(ids), "error", errors.Join(errs...))
		return done, apierr.Dependency("search index rebuild incomplete", errors.Join(errs...))
	}
	ix.log.Info("search index rebuilt", "courses", done)
	return done, nil
}

func (ix *courseIndexer) Search(ctx context.Context, q search.CourseQuery) ([]search.CourseHit, error) {
	if ix.index == nil {
		return nil, apierr.Dependency("search is unavailable", nil)
	}
	var hits []search.CourseHit
	err := ix.call(ctx, func(ctx context.Context) error {
		var err error
		hits, err = ix.index.Search(ctx, q)
		return err
	})
	if err != nil {
		ix.log.Warn("course search failed", "error", err)
		return nil, apierr.Dependency("search is unavailable", err)
	}
	return hits, nil
}

func (ix *courseIndexer) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()
	return fn(ctx)
}

func (ix *courseIndexer) fail(courseID uuid.UUID, op string, err error) *SyncWarning {
	ix.log.Warn("search index sync failed", "op", op, "course_id", courseID, "error", err)
	if ix.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ix.timeout)
		defer cancel()
		if qerr := ix.queue.Push(ctx, courseID); qerr != nil {
			ix.log.Error("queue course for reindex", "course_id", courseID, "error", qerr)
		}
	}
	return &SyncWarning{
		Code:    string(apierr.KindDependencyFailure),
		Message: fmt.Sprintf("search index %s failed; the course will be reindexed", op),
	}
}
