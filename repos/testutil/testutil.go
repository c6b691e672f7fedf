package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

// DB opens a private in-memory sqlite database with every table migrated. A single
// connection keeps the in-memory database alive for the life of the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, firstName string, admin bool) *models.User {
	tb.Helper()
	u := &models.User{FirstName: firstName, LastName: "Tester", IsAdmin: admin}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, ctx context.Context, db *gorm.DB, name string) *models.Category {
	tb.Helper()
	c := &models.Category{Name: name, Slug: name}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedCourse(tb testing.TB, ctx context.Context, db *gorm.DB, instructorID, categoryID uuid.UUID, title string) *models.Course {
	tb.Helper()
	c := &models.Course{
		Title:          title,
		Description:    "a course used in tests",
		CourseContents: datatypes.JSONSlice[string]{"intro"},
		CategoryID:     categoryID,
		InstructorID:   instructorID,
	}
	if err := db.WithContext(ctx).Omit("Category", "Instructor", "Videos", "Community").Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedCommunity(tb testing.TB, ctx context.Context, db *gorm.DB, courseID uuid.UUID, name string) *models.Community {
	tb.Helper()
	c := &models.Community{CourseID: courseID, CommunityName: name}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed community: %v", err)
	}
	return c
}

func SeedVideo(tb testing.TB, ctx context.Context, db *gorm.DB, courseID uuid.UUID, position int, title string) *models.Video {
	tb.Helper()
	v := &models.Video{CourseID: courseID, Position: position, Title: title}
	if err := db.WithContext(ctx).Omit("Test").Create(v).Error; err != nil {
		tb.Fatalf("seed video: %v", err)
	}
	return v
}

// SeedTest attaches a test to videoID with one question per correct answer given.
func SeedTest(tb testing.TB, ctx context.Context, db *gorm.DB, videoID uuid.UUID, correct ...string) *models.Test {
	tb.Helper()
	t := &models.Test{VideoID: videoID}
	for i, answer := range correct {
		t.Questions = append(t.Questions, models.Question{
			Position:      i,
			Text:          "question " + string(rune('A'+i)),
			Options:       datatypes.JSONSlice[string]{answer, "wrong-1", "wrong-2", "wrong-3"},
			CorrectAnswer: answer,
		})
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed test: %v", err)
	}
	return t
}

func SeedProgress(tb testing.TB, ctx context.Context, db *gorm.DB, userID, videoID uuid.UUID, completed, testCompleted bool) *models.Progress {
	tb.Helper()
	p := &models.Progress{UserID: userID, VideoID: videoID, Completed: completed, TestCompleted: testCompleted}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

func Count(tb testing.TB, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	tb.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}
