package services

import (
	"context"
	"strings"

	"github.com/gosimple/slug"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
	"github.com/vnkhanh/e-course-backend/repos"
)

type CategoryService interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type categoryService struct {
	categories repos.CategoryRepo
	log        *logger.Logger
}

func NewCategoryService(categories repos.CategoryRepo, baseLog *logger.Logger) CategoryService {
	return &categoryService{categories: categories, log: baseLog.With("service", "CategoryService")}
}

func (s *categoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.InvalidInput("category name is required")
	}
	slugValue := slug.Make(name)
	if slugValue == "" {
		return nil, apierr.InvalidInput("category name must contain letters or digits")
	}

	exists, err := s.categories.ExistsByNameOrSlug(ctx, nil, name, slugValue)
	if err != nil {
		return nil, apierr.Internal("check category", err)
	}
	if exists {
		return nil, apierr.Conflict("category already exists")
	}

	row := &models.Category{Name: name, Slug: slugValue}
	if err := s.categories.Create(ctx, nil, row); err != nil {
		if isDuplicate(err) {
			return nil, apierr.Conflict("category already exists")
		}
		return nil, apierr.Internal("create category", err)
	}
	return row, nil
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.categories.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal("list categories", err)
	}
	return rows, nil
}

type CommunityService interface {
	List(ctx context.Context) ([]repos.CommunitySummary, error)
	Search(ctx context.Context, filter repos.CommunityFilter) ([]repos.CommunitySummary, error)
}

type communityService struct {
	communities repos.CommunityRepo
	log         *logger.Logger
}

func NewCommunityService(communities repos.CommunityRepo, baseLog *logger.Logger) CommunityService {
	return &communityService{communities: communities, log: baseLog.With("service", "CommunityService")}
}

func (s *communityService) List(ctx context.Context) ([]repos.CommunitySummary, error) {
	return s.Search(ctx, repos.CommunityFilter{})
}

func (s *communityService) Search(ctx context.Context, filter repos.CommunityFilter) ([]repos.CommunitySummary, error) {
	if filter.MinMembers != nil && filter.MaxMembers != nil && *filter.MinMembers > *filter.MaxMembers {
		return nil, apierr.InvalidInput("min_members must not exceed max_members")
	}
	rows, err := s.communities.List(ctx, nil, filter)
	if err != nil {
		return nil, apierr.Internal("list communities", err)
	}
	return rows, nil
}
