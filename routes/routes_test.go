package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/controllers"
	"github.com/vnkhanh/e-course-backend/middleware"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
	"github.com/vnkhanh/e-course-backend/repos/testutil"
	"github.com/vnkhanh/e-course-backend/response"
	"github.com/vnkhanh/e-course-backend/services"
	"github.com/vnkhanh/e-course-backend/utils"
	"github.com/vnkhanh/e-course-backend/ws"
)

const testSecret = "routes-secret"

type server struct {
	r  *gin.Engine
	db *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rs := repos.NewSet(db, log)

	hub := ws.NewHub(log)
	notify := services.NewProgressNotifier(hub)
	indexer := services.NewCourseIndexer(nil, nil, rs, time.Second, log)
	progress := services.NewProgressService(rs.Progress, rs.Videos, notify, log)
	tests := services.NewTestService(db, rs.Tests, rs.Videos, progress, notify, log)

	r := gin.New()
	SetupRouter(r, Handlers{
		Health:     controllers.NewHealthHandler(db, nil),
		Users:      controllers.NewUserHandler(services.NewUserService(rs.Users, log), log),
		Categories: controllers.NewCategoryHandler(services.NewCategoryService(rs.Categories, log), services.NewCommunityService(rs.Communities, log), log),
		Courses:    controllers.NewCourseHandler(services.NewCourseService(db, rs, progress, indexer, log), indexer, log),
		Videos:     controllers.NewVideoHandler(services.NewVideoService(db, rs, progress, indexer, log), progress, tests, log),
		Enrollment: controllers.NewEnrollmentHandler(services.NewEnrollmentService(db, rs, indexer, log), log),
		ProgressWS: ws.HandleProgressWebSocket(hub, ws.NewUpgrader(nil)),
	}, middleware.AuthMiddleware(testSecret, rs.Users, log))
	return &server{r: r, db: db}
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.Claims{
		UserID:           user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status: want=%d got=%d body=%s", status, w.Code, w.Body.String())
	}
	var env response.ErrorEnvelope
	decode(t, w, &env)
	if env.Error.Code != code {
		t.Fatalf("error code: want=%q got=%q", code, env.Error.Code)
	}
}

type unlockRow struct {
	ID         uuid.UUID `json:"id"`
	IsUnlocked bool      `json:"is_unlocked"`
}

func (s *server) videoRows(t *testing.T, token string, courseID uuid.UUID) []unlockRow {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/courses/"+courseID.String()+"/videos", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("videos: status=%d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Videos []unlockRow `json:"videos"`
	}
	decode(t, w, &body)
	return body.Videos
}

func (s *server) unlocks(t *testing.T, token string, courseID uuid.UUID) []bool {
	t.Helper()
	rows := s.videoRows(t, token, courseID)
	out := make([]bool, len(rows))
	for i, v := range rows {
		out[i] = v.IsUnlocked
	}
	return out
}

func TestLearnerUnlocksVideosByWatchingAndPassing(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	admin := testutil.SeedUser(t, ctx, s.db, "Ada", true)
	learner := testutil.SeedUser(t, ctx, s.db, "Linus", false)
	cat := testutil.SeedCategory(t, ctx, s.db, "backend")
	course := testutil.SeedCourse(t, ctx, s.db, admin.ID, cat.ID, "Go in practice")
	testutil.SeedCommunity(t, ctx, s.db, course.ID, "Go in practice Community")
	v0 := testutil.SeedVideo(t, ctx, s.db, course.ID, 0, "Intro")
	v1 := testutil.SeedVideo(t, ctx, s.db, course.ID, 1, "Goroutines")
	v2 := testutil.SeedVideo(t, ctx, s.db, course.ID, 2, "Channels")
	quiz := testutil.SeedTest(t, ctx, s.db, v1.ID, "go", "chan")
	token := tokenFor(t, learner)

	rows := s.videoRows(t, token, course.ID)
	if len(rows) != 3 || rows[0].ID != v0.ID || rows[1].ID != v1.ID || rows[2].ID != v2.ID {
		t.Fatalf("video order: got=%+v", rows)
	}
	if got := s.unlocks(t, token, course.ID); !got[0] || got[1] || got[2] {
		t.Fatalf("initial unlocks: got=%v", got)
	}

	w := s.do(t, http.MethodPost, "/api/videos/"+v1.ID.String()+"/test", token, gin.H{
		"answers": []services.Answer{{QuestionID: quiz.Questions[0].ID, SelectedOption: "go"}},
	})
	expectError(t, w, http.StatusNotFound, "not_found")

	for _, v := range []*models.Video{v0, v1} {
		if w := s.do(t, http.MethodPost, "/api/videos/"+v.ID.String()+"/watched", token, nil); w.Code != http.StatusOK {
			t.Fatalf("watched %s: status=%d body=%s", v.Title, w.Code, w.Body.String())
		}
	}
	if got := s.unlocks(t, token, course.ID); !got[1] || got[2] {
		t.Fatalf("after watching: got=%v", got)
	}

	w = s.do(t, http.MethodPost, "/api/videos/"+v1.ID.String()+"/test", token, gin.H{
		"answers": []services.Answer{
			{QuestionID: quiz.Questions[0].ID, SelectedOption: "go"},
			{QuestionID: quiz.Questions[1].ID, SelectedOption: "wrong-1"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status=%d body=%s", w.Code, w.Body.String())
	}
	var eval services.Evaluation
	decode(t, w, &eval)
	if !eval.Passed || eval.Percentage != 50 || eval.Score != 1 || eval.Total != 2 {
		t.Fatalf("evaluation: got=%+v", eval)
	}
	if got := s.unlocks(t, token, course.ID); !got[2] {
		t.Fatalf("after passing: got=%v", got)
	}

	w = s.do(t, http.MethodGet, "/api/videos/"+v1.ID.String()+"/attempts", token, nil)
	var attempts struct {
		Attempts []models.TestAttempt `json:"attempts"`
	}
	decode(t, w, &attempts)
	if len(attempts.Attempts) != 1 {
		t.Fatalf("attempts: want=1 got=%d", len(attempts.Attempts))
	}
}

func TestEnrollTwiceIsConflict(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	admin := testutil.SeedUser(t, ctx, s.db, "Ada", true)
	learner := testutil.SeedUser(t, ctx, s.db, "Linus", false)
	cat := testutil.SeedCategory(t, ctx, s.db, "backend")
	course := testutil.SeedCourse(t, ctx, s.db, admin.ID, cat.ID, "Go in practice")
	testutil.SeedCommunity(t, ctx, s.db, course.ID, "Go in practice Community")
	token := tokenFor(t, learner)
	path := "/api/courses/" + course.ID.String() + "/enroll"

	if w := s.do(t, http.MethodPost, path, token, nil); w.Code != http.StatusCreated {
		t.Fatalf("enroll: status=%d body=%s", w.Code, w.Body.String())
	}
	expectError(t, s.do(t, http.MethodPost, path, token, nil), http.StatusConflict, "conflict")
	expectError(t, s.do(t, http.MethodPost, "/api/courses/"+uuid.NewString()+"/enroll", token, nil), http.StatusNotFound, "not_found")

	w := s.do(t, http.MethodGet, "/api/courses/"+course.ID.String()+"/users/count", token, nil)
	var count struct {
		Count int64 `json:"count"`
	}
	decode(t, w, &count)
	if count.Count != 1 {
		t.Fatalf("count: want=1 got=%d", count.Count)
	}
	if n := testutil.Count(t, s.db, &models.CommunityMember{}, "user_id = ?", learner.ID); n != 1 {
		t.Fatalf("community members: want=1 got=%d", n)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	admin := testutil.SeedUser(t, ctx, s.db, "Ada", true)
	learner := testutil.SeedUser(t, ctx, s.db, "Linus", false)
	body := gin.H{"name": "Data Science"}

	expectError(t, s.do(t, http.MethodPost, "/api/admin/categories", "", body), http.StatusUnauthorized, "unauthorized")
	expectError(t, s.do(t, http.MethodPost, "/api/admin/categories", tokenFor(t, learner), body), http.StatusForbidden, "forbidden")

	w := s.do(t, http.MethodPost, "/api/admin/categories", tokenFor(t, admin), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create category: status=%d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Category models.Category `json:"category"`
	}
	decode(t, w, &created)
	if created.Category.Slug != "data-science" {
		t.Fatalf("slug: want=data-science got=%q", created.Category.Slug)
	}
	expectError(t, s.do(t, http.MethodPost, "/api/admin/categories", tokenFor(t, admin), body), http.StatusConflict, "conflict")

	w = s.do(t, http.MethodGet, "/api/categories", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list categories: status=%d", w.Code)
	}
}

func TestPublicEndpoints(t *testing.T) {
	s := newServer(t)

	expectError(t, s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"first_name": "Grace"}), http.StatusBadRequest, "invalid_input")
	w := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"first_name": "Grace", "email": "Grace@Example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status=%d body=%s", w.Code, w.Body.String())
	}

	expectError(t, s.do(t, http.MethodGet, "/api/courses/search?q=go", "", nil), http.StatusBadGateway, "dependency_failure")
	expectError(t, s.do(t, http.MethodGet, "/api/courses/search?min_price=cheap", "", nil), http.StatusBadRequest, "invalid_input")

	w = s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestBodyErrorsHideDecoderDetails(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(`{"first_name": 42, "email": "a@b.io"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	expectError(t, w, http.StatusBadRequest, "invalid_input")
	var env response.ErrorEnvelope
	decode(t, w, &env)
	if env.Error.Message != "invalid request body" {
		t.Fatalf("decoder message: want=%q got=%q", "invalid request body", env.Error.Message)
	}

	w = s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"first_name": "Grace", "email": "Grace <grace@example.com>"})
	expectError(t, w, http.StatusBadRequest, "invalid_input")
	decode(t, w, &env)
	if env.Error.Message != "email is not a valid email address" {
		t.Fatalf("field message: want=%q got=%q", "email is not a valid email address", env.Error.Message)
	}
}
