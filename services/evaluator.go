package services

import (
	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/models"
)

// PassPercentage is the inclusive threshold for passing a test.
const PassPercentage = 50

type Answer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption string    `json:"selected_option"`
}

type Evaluation struct {
	Passed     bool `json:"passed"`
	Percentage int  `json:"percentage"`
	Score      int  `json:"score"`
	Total      int  `json:"total"`
}

func validateAnswers(answers []Answer) error {
	if len(answers) == 0 {
		return apierr.InvalidInput("answers are required")
	}
	for _, a := range answers {
		if a.QuestionID == uuid.Nil {
			return apierr.InvalidInput("every answer needs a question_id")
		}
	}
	return nil
}

// EvaluateTest scores answers against questions. A question without an answer counts as
// wrong and answers to unknown questions are ignored. When a question id is answered
// more than once the first answer wins.
func EvaluateTest(questions []models.Question, answers []Answer) (Evaluation, error) {
	if err := validateAnswers(answers); err != nil {
		return Evaluation{}, err
	}
	if len(questions) == 0 {
		return Evaluation{}, apierr.NotFound("test has no questions")
	}

	selected := make(map[uuid.UUID]string, len(answers))
	for _, a := range answers {
		if _, seen := selected[a.QuestionID]; !seen {
			selected[a.QuestionID] = a.SelectedOption
		}
	}

	score := 0
	for _, q := range questions {
		if opt, ok := selected[q.ID]; ok && opt == q.CorrectAnswer {
			score++
		}
	}
	total := len(questions)
	pct := score * 100 / total
	return Evaluation{
		Passed:     pct >= PassPercentage,
		Percentage: pct,
		Score:      score,
		Total:      total,
	}, nil
}
