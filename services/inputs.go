package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vnkhanh/e-course-backend/models"
)

type QuestionInput struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	Text          string     `json:"text" binding:"required,notblank"`
	Options       []string   `json:"options" binding:"len=4,dive,required,notblank"`
	CorrectAnswer string     `json:"correct_answer" binding:"required"`
}

type ChallengeInput struct {
	Description string `json:"description" binding:"required,notblank"`
}

type TestInput struct {
	Questions []QuestionInput `json:"questions" binding:"dive"`
	Challenge *ChallengeInput `json:"challenge,omitempty"`
}

type VideoInput struct {
	Title        string     `json:"title" binding:"required,notblank,max=200"`
	Thumbnail    string     `json:"video_thumbnail" binding:"omitempty,http_url"`
	VideoURL     string     `json:"video_url" binding:"omitempty,http_url"`
	DemoVideoURL string     `json:"demo_video_url" binding:"omitempty,http_url"`
	VideoSteps   []string   `json:"video_steps"`
	AudioURL     string     `json:"audio_url" binding:"omitempty,http_url"`
	Transcript   string     `json:"video_transcript"`
	AnimationURL string     `json:"animation_url" binding:"omitempty,http_url"`
	Test         *TestInput `json:"test,omitempty"`
}

type CourseInput struct {
	Title          string       `json:"title" binding:"required,notblank,min=3,max=200"`
	Description    string       `json:"description" binding:"required,min=10"`
	Thumbnail      string       `json:"thumbnail" binding:"omitempty,http_url"`
	CourseContents []string     `json:"course_contents"`
	CategoryID     uuid.UUID    `json:"category_id" binding:"required"`
	Price          *float64     `json:"price,omitempty" binding:"omitempty,gte=0"`
	Videos         []VideoInput `json:"videos" binding:"dive"`
}

func (q QuestionInput) model(testID uuid.UUID, position int) models.Question {
	row := models.Question{
		TestID:        testID,
		Position:      position,
		Text:          strings.TrimSpace(q.Text),
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: q.CorrectAnswer,
	}
	if q.ID != nil {
		row.ID = *q.ID
	}
	return row
}

func (t *TestInput) model(videoID uuid.UUID) *models.Test {
	test := &models.Test{VideoID: videoID}
	for i, q := range t.Questions {
		test.Questions = append(test.Questions, q.model(uuid.Nil, i))
	}
	if t.Challenge != nil {
		test.Challenge = &models.Challenge{Description: strings.TrimSpace(t.Challenge.Description)}
	}
	return test
}

func (v VideoInput) model(courseID uuid.UUID, position int) *models.Video {
	return &models.Video{
		CourseID:     courseID,
		Position:     position,
		Title:        strings.TrimSpace(v.Title),
		Thumbnail:    v.Thumbnail,
		VideoURL:     v.VideoURL,
		DemoVideoURL: v.DemoVideoURL,
		VideoSteps:   append([]string{}, v.VideoSteps...),
		AudioURL:     v.AudioURL,
		Transcript:   v.Transcript,
		AnimationURL: v.AnimationURL,
	}
}

func (v VideoInput) fields() map[string]interface{} {
	return map[string]interface{}{
		"title":          strings.TrimSpace(v.Title),
		"thumbnail":      v.Thumbnail,
		"video_url":      v.VideoURL,
		"demo_video_url": v.DemoVideoURL,
		"video_steps":    jsonStrings(v.VideoSteps),
		"audio_url":      v.AudioURL,
		"transcript":     v.Transcript,
		"animation_url":  v.AnimationURL,
	}
}

func jsonStrings(in []string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string](append([]string{}, in...))
}

// HideAnswers blanks correct answers so a test can be shown to learners.
func HideAnswers(test *models.Test) {
	if test == nil {
		return
	}
	for i := range test.Questions {
		test.Questions[i].CorrectAnswer = ""
	}
}
