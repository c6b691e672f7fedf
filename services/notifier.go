package services

import (
	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/models"
)

const (
	EventVideoWatched = "video_watched"
	EventTestPassed   = "test_passed"
)

// ProgressEvent is pushed to a user's live connections when their progress changes.
type ProgressEvent struct {
	Type       string    `json:"type"`
	VideoID    uuid.UUID `json:"video_id"`
	CourseID   uuid.UUID `json:"course_id"`
	Percentage int       `json:"percentage,omitempty"`
}

type Broadcaster interface {
	SendToUser(userID uuid.UUID, payload interface{})
}

type ProgressNotifier interface {
	VideoWatched(userID uuid.UUID, video *models.Video)
	TestPassed(userID uuid.UUID, video *models.Video, eval Evaluation)
}

type progressNotifier struct {
	out Broadcaster
}

// NewProgressNotifier returns a notifier that drops events when out is nil.
func NewProgressNotifier(out Broadcaster) ProgressNotifier {
	return &progressNotifier{out: out}
}

func (n *progressNotifier) VideoWatched(userID uuid.UUID, video *models.Video) {
	if n == nil || n.out == nil || video == nil {
		return
	}
	n.out.SendToUser(userID, ProgressEvent{
		Type:     EventVideoWatched,
		VideoID:  video.ID,
		CourseID: video.CourseID,
	})
}

func (n *progressNotifier) TestPassed(userID uuid.UUID, video *models.Video, eval Evaluation) {
	if n == nil || n.out == nil || video == nil {
		return
	}
	n.out.SendToUser(userID, ProgressEvent{
		Type:       EventTestPassed,
		VideoID:    video.ID,
		CourseID:   video.CourseID,
		Percentage: eval.Percentage,
	})
}
