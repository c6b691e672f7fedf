package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/repos"
	"github.com/vnkhanh/e-course-backend/repos/testutil"
	"github.com/vnkhanh/e-course-backend/utils"
)

const testSecret = "test-secret"

func tokenFor(t *testing.T, id string, admin bool) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.Claims{
		UserID:           id,
		IsAdmin:          admin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(db, log)

	r := gin.New()
	authed := r.Group("/", AuthMiddleware(testSecret, users, log))
	authed.GET("/me", func(c *gin.Context) {
		id, _ := CurrentUser(c)
		c.String(http.StatusOK, id.String())
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, db
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, db := newRouter(t)
	ctx := context.Background()
	ann := testutil.SeedUser(t, ctx, db, "Ann", false)

	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"code":"unauthorized"`) {
		t.Fatalf("no token: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, "/me", "Bearer nope"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status=%d", w.Code)
	}
	if w := do(r, "/me", "Bearer "+tokenFor(t, uuid.New().String(), false)); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status=%d", w.Code)
	}
	w := do(r, "/me", "Bearer "+tokenFor(t, ann.ID.String(), false))
	if w.Code != http.StatusOK || w.Body.String() != ann.ID.String() {
		t.Fatalf("valid token: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, "/me?token="+tokenFor(t, ann.ID.String(), false), ""); w.Code != http.StatusOK {
		t.Fatalf("query token: status=%d", w.Code)
	}
}

func TestRequireAdminUsesStoredFlag(t *testing.T) {
	r, db := newRouter(t)
	ctx := context.Background()
	ann := testutil.SeedUser(t, ctx, db, "Ann", false)
	root := testutil.SeedUser(t, ctx, db, "Root", true)

	// a token claiming admin does not make a learner an admin
	if w := do(r, "/admin", "Bearer "+tokenFor(t, ann.ID.String(), true)); w.Code != http.StatusForbidden {
		t.Fatalf("learner: status=%d", w.Code)
	}
	if w := do(r, "/admin", "Bearer "+tokenFor(t, root.ID.String(), false)); w.Code != http.StatusNoContent {
		t.Fatalf("admin: status=%d", w.Code)
	}
}
