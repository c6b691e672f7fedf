package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

type CategoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Category, error)
	ExistsByNameOrSlug(ctx context.Context, tx *gorm.DB, name, slug string) (bool, error)
	List(ctx context.Context, tx *gorm.DB) ([]models.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(ctx context.Context, tx *gorm.DB, row *models.Category) error {
	return conn(ctx, r.db, tx).Create(row).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Category, error) {
	return firstOrNil(conn(ctx, r.db, tx).Where("id = ?", id), &models.Category{})
}

func (r *categoryRepo) ExistsByNameOrSlug(ctx context.Context, tx *gorm.DB, name, slug string) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&models.Category{}).
		Where("LOWER(TRIM(name)) = ? OR slug = ?", toLower(name), slug).
		Count(&count).Error
	return count > 0, err
}

func (r *categoryRepo) List(ctx context.Context, tx *gorm.DB) ([]models.Category, error) {
	rows := []models.Category{}
	err := conn(ctx, r.db, tx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func toLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
