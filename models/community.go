package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community is the discussion group of a course. Membership mirrors enrollment.
type Community struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	CommunityName string    `gorm:"size:255;not null" json:"community_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Members []CommunityMember `gorm:"foreignKey:CommunityID" json:"members,omitempty"`
}

func (c *Community) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type CommunityMember struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_community_user" json:"community_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_community_user" json:"user_id"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (m *CommunityMember) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
