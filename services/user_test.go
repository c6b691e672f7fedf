package services

import (
	"context"
	"testing"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos/testutil"
)

func strPtr(s string) *string { return &s }

func TestRegisterRejectsDisplayNameEmail(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.rs.Users, testutil.Logger(t))
	ctx := context.Background()

	_, err := users.Register(ctx, RegisterInput{FirstName: "Bob", Email: strPtr("Bob <bob@x.io>")})
	if !apierr.Is(err, apierr.KindInvalidInput) {
		t.Fatalf("display name email: want invalid_input got=%v", err)
	}
	if msg := apierr.PublicMessage(err); msg != "email is not a valid email address" {
		t.Fatalf("message: want=%q got=%q", "email is not a valid email address", msg)
	}
	if n := testutil.Count(t, f.db, &models.User{}, ""); n != 0 {
		t.Fatalf("users: want=0 got=%d", n)
	}
}

func TestRegisterNormalizesEmailBeforeUniqueness(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.rs.Users, testutil.Logger(t))
	ctx := context.Background()

	u, err := users.Register(ctx, RegisterInput{FirstName: "  Bob ", Email: strPtr(" Bob@X.io ")})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.FirstName != "Bob" || u.Email == nil || *u.Email != "bob@x.io" {
		t.Fatalf("stored user: %+v", u)
	}

	_, err = users.Register(ctx, RegisterInput{FirstName: "Robert", Email: strPtr("bob@x.io")})
	if !apierr.Is(err, apierr.KindConflict) {
		t.Fatalf("second register: want conflict got=%v", err)
	}
}

func TestRegisterNeedsContactAndName(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.rs.Users, testutil.Logger(t))
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"no contact", RegisterInput{FirstName: "Ada", Email: strPtr("  ")}, "email or phone is required"},
		{"blank name", RegisterInput{FirstName: "   ", Phone: strPtr("5550100")}, "first_name is required"},
		{"short phone", RegisterInput{FirstName: "Ada", Phone: strPtr("123")}, "phone must be at least 6 characters"},
	}
	for _, tc := range cases {
		_, err := users.Register(ctx, tc.in)
		if !apierr.Is(err, apierr.KindInvalidInput) {
			t.Fatalf("%s: want invalid_input got=%v", tc.name, err)
		}
		if msg := apierr.PublicMessage(err); msg != tc.msg {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.msg, msg)
		}
	}
}
