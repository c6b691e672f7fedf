package services

import (
	"context"
	"strings"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
)

type RegisterInput struct {
	FirstName string  `json:"first_name" binding:"required,notblank,max=100"`
	LastName  string  `json:"last_name" binding:"max=100"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Phone     *string `json:"phone" binding:"omitempty,min=6,max=20"`
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
}

type userService struct {
	users repos.UserRepo
	log   *logger.Logger
}

func NewUserService(users repos.UserRepo, baseLog *logger.Logger) UserService {
	return &userService{users: users, log: baseLog.With("service", "UserService")}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in = in.normalized()
	if err := validate(in); err != nil {
		return nil, err
	}
	email, phone := in.Email, in.Phone

	exists, err := s.users.ExistsByEmailOrPhone(ctx, nil, email, phone)
	if err != nil {
		return nil, apierr.Internal("check user", err)
	}
	if exists {
		return nil, apierr.Conflict("user already exists")
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Phone:     phone,
	}
	if err := s.users.Create(ctx, nil, user); err != nil {
		if isDuplicate(err) {
			return nil, apierr.Conflict("user already exists")
		}
		return nil, apierr.Internal("create user", err)
	}
	s.log.Info("user registered", "user_id", user.ID, "email", email)
	return user, nil
}

// normalized trims every field, lowercases the email and drops empty contacts, so the
// stored value is the one uniqueness is checked against.
func (in RegisterInput) normalized() RegisterInput {
	out := RegisterInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     trimmedOrNil(in.Email),
		Phone:     trimmedOrNil(in.Phone),
	}
	if out.Email != nil {
		lowered := strings.ToLower(*out.Email)
		out.Email = &lowered
	}
	return out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
