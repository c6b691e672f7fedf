package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/models"
)

// CommunitySummary is a community with its member count.
type CommunitySummary struct {
	ID            uuid.UUID `json:"id"`
	CommunityName string    `json:"community_name"`
	CourseID      uuid.UUID `json:"course_id"`
	MemberCount   int64     `json:"member_count"`
}

// CommunityFilter narrows List. SortBy is "community_name", "created_at" or
// "member_count"; anything else keeps insertion order.
type CommunityFilter struct {
	Query      string
	MinMembers *int64
	MaxMembers *int64
	SortBy     string
	Desc       bool
	Limit      int
	Offset     int
}

type CommunityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *models.Community) error
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*models.Community, error)
	AddMember(ctx context.Context, tx *gorm.DB, row *models.CommunityMember) error
	List(ctx context.Context, tx *gorm.DB, filter CommunityFilter) ([]CommunitySummary, error)
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
}

type communityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityRepo(db *gorm.DB, baseLog *logger.Logger) CommunityRepo {
	return &communityRepo{db: db, log: baseLog.With("repo", "CommunityRepo")}
}

func (r *communityRepo) Create(ctx context.Context, tx *gorm.DB, row *models.Community) error {
	return conn(ctx, r.db, tx).Omit("Members").Create(row).Error
}

func (r *communityRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*models.Community, error) {
	return firstOrNil(conn(ctx, r.db, tx).Where("course_id = ?", courseID), &models.Community{})
}

func (r *communityRepo) AddMember(ctx context.Context, tx *gorm.DB, row *models.CommunityMember) error {
	return conn(ctx, r.db, tx).Create(row).Error
}

var communitySorts = map[string]string{
	"community_name": "communities.community_name",
	"created_at":     "communities.created_at",
	"member_count":   "member_count",
}

func (r *communityRepo) List(ctx context.Context, tx *gorm.DB, filter CommunityFilter) ([]CommunitySummary, error) {
	q := conn(ctx, r.db, tx).
		Model(&models.Community{}).
		Select("communities.id, communities.community_name, communities.course_id, COUNT(community_members.id) AS member_count").
		Joins("LEFT JOIN community_members ON community_members.community_id = communities.id").
		Group("communities.id, communities.community_name, communities.course_id, communities.created_at")

	if filter.Query != "" {
		q = q.Where("LOWER(communities.community_name) LIKE ?", "%"+toLower(filter.Query)+"%")
	}
	if filter.MinMembers != nil {
		q = q.Having("COUNT(community_members.id) >= ?", *filter.MinMembers)
	}
	if filter.MaxMembers != nil {
		q = q.Having("COUNT(community_members.id) <= ?", *filter.MaxMembers)
	}
	if col, ok := communitySorts[filter.SortBy]; ok {
		dir := " ASC"
		if filter.Desc {
			dir = " DESC"
		}
		q = q.Order(col + dir)
	} else {
		q = q.Order("communities.created_at ASC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	out := []CommunitySummary{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *communityRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	db := conn(ctx, r.db, tx)
	ids := db.Session(&gorm.Session{NewDB: true}).Model(&models.Community{}).Select("id").Where("course_id = ?", courseID)
	if err := db.Where("community_id IN (?)", ids).Delete(&models.CommunityMember{}).Error; err != nil {
		return err
	}
	return db.Where("course_id = ?", courseID).Delete(&models.Community{}).Error
}
