package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Test struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"video_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Questions []Question `gorm:"foreignKey:TestID" json:"questions"`
	Challenge *Challenge `gorm:"foreignKey:TestID" json:"challenge,omitempty"`
}

func (t *Test) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

type Question struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	TestID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"test_id"`
	Position      int                         `gorm:"not null;default:0" json:"position"`
	Text          string                      `gorm:"type:text;not null" json:"text"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `gorm:"type:text;not null" json:"correct_answer,omitempty"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

type Challenge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TestID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"test_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
}

func (c *Challenge) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// TestAttempt is one graded submission. Attempts are history only; unlocking is driven
// by Progress.TestCompleted.
type TestAttempt struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TestID     uuid.UUID `gorm:"type:uuid;not null;index" json:"test_id"`
	VideoID    uuid.UUID `gorm:"type:uuid;not null;index" json:"video_id"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
	Passed     bool      `json:"passed"`
	TakenAt    time.Time `gorm:"autoCreateTime" json:"taken_at"`
}

func (a *TestAttempt) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
