package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress is the per-user, per-video watch and test state.
type Progress struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_video" json:"user_id"`
	VideoID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_video;index" json:"video_id"`
	Completed     bool       `gorm:"default:false" json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	TestCompleted bool       `gorm:"default:false" json:"test_completed"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Progress) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
