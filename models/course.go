package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string                      `gorm:"size:255;not null" json:"title"`
	Description    string                      `gorm:"type:text" json:"description"`
	Thumbnail      string                      `gorm:"type:text" json:"thumbnail"`
	CourseContents datatypes.JSONSlice[string] `json:"course_contents"`
	Price          float64                     `gorm:"default:0" json:"price"`
	CategoryID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"category_id"`
	InstructorID   uuid.UUID                   `gorm:"type:uuid;not null;index" json:"instructor_id"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`

	Category   Category   `gorm:"foreignKey:CategoryID" json:"category"`
	Instructor User       `gorm:"foreignKey:InstructorID" json:"instructor"`
	Videos     []Video    `gorm:"foreignKey:CourseID" json:"videos,omitempty"`
	Community  *Community `gorm:"foreignKey:CourseID" json:"community,omitempty"`
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
