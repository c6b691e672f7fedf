package services

import (
	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/models"
)

// VideoWithUnlock is a course video annotated for one viewer.
type VideoWithUnlock struct {
	models.Video
	IsUnlocked bool `json:"is_unlocked"`
}

// ComputeUnlocks walks videos in order and marks each one unlocked when it is the first
// video or the previous one is satisfied. A video is satisfied once it is watched and
// either its test is passed or it carries no gradable test. Neither argument is modified.
func ComputeUnlocks(videos []models.Video, progress map[uuid.UUID]models.Progress) []VideoWithUnlock {
	out := make([]VideoWithUnlock, len(videos))
	previousSatisfied := true
	for i, v := range videos {
		out[i] = VideoWithUnlock{Video: v, IsUnlocked: i == 0 || previousSatisfied}

		p, ok := progress[v.ID]
		previousSatisfied = ok && p.Completed && (p.TestCompleted || !v.RequiresTest())
	}
	return out
}
