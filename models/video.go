package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Video belongs to exactly one course. Position is the order videos were added in and
// is the sequence in which they unlock.
type Video struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"course_id"`
	Position     int                         `gorm:"not null;default:0" json:"position"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	Thumbnail    string                      `gorm:"type:text" json:"video_thumbnail"`
	VideoURL     string                      `gorm:"type:text" json:"video_url"`
	DemoVideoURL string                      `gorm:"type:text" json:"demo_video_url"`
	VideoSteps   datatypes.JSONSlice[string] `json:"video_steps"`
	AudioURL     string                      `gorm:"type:text" json:"audio_url"`
	Transcript   string                      `gorm:"type:text" json:"video_transcript"`
	AnimationURL string                      `gorm:"type:text" json:"animation_url"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`

	Test *Test `gorm:"foreignKey:VideoID" json:"test,omitempty"`
}

func (v *Video) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// RequiresTest reports whether the video carries a test that can actually be passed.
// A test with no questions can never be passed, so it gates nothing.
func (v Video) RequiresTest() bool {
	return v.Test != nil && len(v.Test.Questions) > 0
}
