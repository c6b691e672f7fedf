package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/models"
)

func questions(correct ...string) []models.Question {
	out := make([]models.Question, 0, len(correct))
	for _, c := range correct {
		out = append(out, models.Question{ID: uuid.New(), Options: fourOptions(c), CorrectAnswer: c})
	}
	return out
}

func TestEvaluateTestHalfCorrectPasses(t *testing.T) {
	qs := questions("a", "b", "c", "d")
	answers := []Answer{
		{QuestionID: qs[0].ID, SelectedOption: "a"},
		{QuestionID: qs[1].ID, SelectedOption: "b"},
		{QuestionID: qs[2].ID, SelectedOption: "wrong-1"},
		{QuestionID: qs[3].ID, SelectedOption: "wrong-2"},
	}
	got, err := EvaluateTest(qs, answers)
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}
	if got.Percentage != 50 || !got.Passed || got.Score != 2 || got.Total != 4 {
		t.Fatalf("EvaluateTest: got=%+v", got)
	}
}

func TestEvaluateTestNothingAnsweredFails(t *testing.T) {
	qs := questions("a", "b", "c", "d")
	got, err := EvaluateTest(qs, []Answer{{QuestionID: uuid.New(), SelectedOption: "a"}})
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}
	if got.Percentage != 0 || got.Passed {
		t.Fatalf("EvaluateTest: got=%+v", got)
	}
}

func TestEvaluateTestFloorsPercentage(t *testing.T) {
	qs := questions("a", "b", "c")
	got, err := EvaluateTest(qs, []Answer{{QuestionID: qs[0].ID, SelectedOption: "a"}})
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}
	if got.Percentage != 33 || got.Passed {
		t.Fatalf("EvaluateTest: got=%+v", got)
	}
}

func TestEvaluateTestMatchesExactly(t *testing.T) {
	qs := questions("Go")
	got, err := EvaluateTest(qs, []Answer{
		{QuestionID: qs[0].ID, SelectedOption: "go"},
		{QuestionID: qs[0].ID, SelectedOption: "Go"},
	})
	if err != nil {
		t.Fatalf("EvaluateTest: %v", err)
	}
	if got.Score != 0 {
		t.Fatalf("first answer for a question must win: got=%+v", got)
	}
}

func TestEvaluateTestRejectsBadInput(t *testing.T) {
	qs := questions("a")
	if _, err := EvaluateTest(qs, nil); !apierr.Is(err, apierr.KindInvalidInput) {
		t.Fatalf("empty answers: want invalid_input got=%v", err)
	}
	if _, err := EvaluateTest(qs, []Answer{{SelectedOption: "a"}}); !apierr.Is(err, apierr.KindInvalidInput) {
		t.Fatalf("missing question id: want invalid_input got=%v", err)
	}
	if _, err := EvaluateTest(nil, []Answer{{QuestionID: uuid.New()}}); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("no questions: want not_found got=%v", err)
	}
}
