package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, tx *gorm.DB, email, phone *string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, row *models.User) error {
	return conn(ctx, r.db, tx).Create(row).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	return firstOrNil(conn(ctx, r.db, tx).Where("id = ?", id), &models.User{})
}

func (r *userRepo) ExistsByEmailOrPhone(ctx context.Context, tx *gorm.DB, email, phone *string) (bool, error) {
	if email == nil && phone == nil {
		return false, nil
	}
	q := conn(ctx, r.db, tx).Model(&models.User{})
	switch {
	case email != nil && phone != nil:
		q = q.Where("email = ? OR phone = ?", *email, *phone)
	case email != nil:
		q = q.Where("email = ?", *email)
	default:
		q = q.Where("phone = ?", *phone)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}
