package services

import (
	"encoding/json"
	"testing"

	"github.com/quizbank/admin-service/internal/models"
)

func rawQuizFromJSON(t *testing.T, payload string) *models.RawQuiz {
	t.Helper()
	var raw models.RawQuiz
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return &raw
}

func validRawQuiz() *models.RawQuiz {
	return &models.RawQuiz{
		Title:    "Algebra Basics",
		TestType: string(models.TestTypePractice),
		Status:   string(models.StatusDraft),
		Sections: []models.RawSection{{
			Name: "Linear Equations",
			Questions: []models.RawQuestion{{
				Text: "What is 2x when x = 3?",
				Options: []models.RawOption{
					{Text: "6", IsCorrect: true},
					{Text: "5"},
				},
			}},
		}},
	}
}

func TestNormalize_LegacyFlatQuestions(t *testing.T) {
	raw := &models.RawQuiz{
		Title:    "Old Quiz",
		TestType: string(models.TestTypeMock),
		Questions: []models.RawQuestion{
			{Text: "Q1", Options: []models.RawOption{{Text: "A", IsCorrect: true}}},
			{Text: "Q2", Options: []models.RawOption{{Text: "B", IsCorrect: true}}},
		},
	}

	quiz, errs := Normalize(raw)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(quiz.Sections) != 1 {
		t.Fatalf("expected 1 synthetic section, got %d", len(quiz.Sections))
	}
	if quiz.Sections[0].Name != LegacySectionName {
		t.Errorf("expected section name %q, got %q", LegacySectionName, quiz.Sections[0].Name)
	}
	if got := len(quiz.Sections[0].Questions); got != 2 {
		t.Errorf("expected 2 questions, got %d", got)
	}
	if quiz.Sections[0].Questions[0].Text != "Q1" || quiz.Sections[0].Questions[1].Text != "Q2" {
		t.Error("question order not preserved")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	quiz, errs := Normalize(validRawQuiz())
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}

	again, errs := Normalize(rawFromQuiz(quiz))
	if errs != nil {
		t.Fatalf("unexpected errors on second pass: %v", errs)
	}

	if again.Sections[0].ID != quiz.Sections[0].ID {
		t.Error("section id changed on second normalization")
	}
	if again.Sections[0].Questions[0].ID != quiz.Sections[0].Questions[0].ID {
		t.Error("question id changed on second normalization")
	}
	if again.Sections[0].Questions[0].Options[0].ID != quiz.Sections[0].Questions[0].Options[0].ID {
		t.Error("option id changed on second normalization")
	}
}

func TestNormalize_BackfillsIDs(t *testing.T) {
	quiz, errs := Normalize(validRawQuiz())
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if quiz.Sections[0].ID == "" {
		t.Error("section id not backfilled")
	}
	q := quiz.Sections[0].Questions[0]
	if q.ID == "" {
		t.Error("question id not backfilled")
	}
	for i, o := range q.Options {
		if o.ID == "" {
			t.Errorf("option %d id not backfilled", i)
		}
	}
	if len(q.ID) != 24 {
		t.Errorf("expected 24-char hex id, got %q", q.ID)
	}
}

func TestNormalize_MarksDefaults(t *testing.T) {
	t.Run("missing marks default to 1 and 0", func(t *testing.T) {
		quiz, errs := Normalize(validRawQuiz())
		if errs != nil {
			t.Fatalf("unexpected errors: %v", errs)
		}
		q := quiz.Sections[0].Questions[0]
		if q.Marks != 1 {
			t.Errorf("expected default marks 1, got %v", q.Marks)
		}
		if q.NegativeMarks != 0 {
			t.Errorf("expected default negativeMarks 0, got %v", q.NegativeMarks)
		}
	})

	t.Run("string numbers are coerced", func(t *testing.T) {
		raw := rawQuizFromJSON(t, `{
			"title": "T", "testType": "Mock",
			"sections": [{"name": "S", "questions": [{
				"text": "Q",
				"marks": "2.5",
				"negativeMarks": "0.5",
				"options": [{"text": "A", "isCorrect": true}]
			}]}]
		}`)
		quiz, errs := Normalize(raw)
		if errs != nil {
			t.Fatalf("unexpected errors: %v", errs)
		}
		q := quiz.Sections[0].Questions[0]
		if q.Marks != 2.5 {
			t.Errorf("expected marks 2.5, got %v", q.Marks)
		}
		if q.NegativeMarks != 0.5 {
			t.Errorf("expected negativeMarks 0.5, got %v", q.NegativeMarks)
		}
	})

	t.Run("timer string is coerced to int", func(t *testing.T) {
		raw := rawQuizFromJSON(t, `{
			"title": "T", "testType": "Mock",
			"overallTimerMinutes": "90",
			"sections": [{"name": "S", "questions": [{
				"text": "Q", "options": [{"text": "A", "isCorrect": true}]
			}]}]
		}`)
		quiz, errs := Normalize(raw)
		if errs != nil {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if quiz.TimerMinutes == nil || *quiz.TimerMinutes != 90 {
			t.Errorf("expected timer 90, got %v", quiz.TimerMinutes)
		}
	})
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(raw *models.RawQuiz)
		field  string
	}{
		{
			name:   "missing title",
			mutate: func(raw *models.RawQuiz) { raw.Title = "" },
			field:  "title",
		},
		{
			name:   "invalid test type",
			mutate: func(raw *models.RawQuiz) { raw.TestType = "Midterm" },
			field:  "testType",
		},
		{
			name:   "no sections or questions",
			mutate: func(raw *models.RawQuiz) { raw.Sections = nil; raw.Questions = nil },
			field:  "sections",
		},
		{
			name:   "empty section name",
			mutate: func(raw *models.RawQuiz) { raw.Sections[0].Name = "   " },
			field:  "sections[0].name",
		},
		{
			name: "zero marks",
			mutate: func(raw *models.RawQuiz) {
				raw.Sections[0].Questions[0].Marks = flexPtr(0)
			},
			field: "sections[0].questions[0].marks",
		},
		{
			name: "negative negativeMarks",
			mutate: func(raw *models.RawQuiz) {
				raw.Sections[0].Questions[0].NegativeMarks = flexPtr(-1)
			},
			field: "sections[0].questions[0].negativeMarks",
		},
		{
			name: "no options",
			mutate: func(raw *models.RawQuiz) {
				raw.Sections[0].Questions[0].Options = nil
			},
			field: "sections[0].questions[0].options",
		},
		{
			name: "too many options",
			mutate: func(raw *models.RawQuiz) {
				opts := make([]models.RawOption, 6)
				for i := range opts {
					opts[i] = models.RawOption{Text: "X", IsCorrect: i == 0}
				}
				raw.Sections[0].Questions[0].Options = opts
			},
			field: "sections[0].questions[0].options",
		},
		{
			name: "no correct option",
			mutate: func(raw *models.RawQuiz) {
				for i := range raw.Sections[0].Questions[0].Options {
					raw.Sections[0].Questions[0].Options[i].IsCorrect = false
				}
			},
			field: "sections[0].questions[0].options",
		},
		{
			name: "no option content",
			mutate: func(raw *models.RawQuiz) {
				raw.Sections[0].Questions[0].Options = []models.RawOption{
					{Text: "  ", IsCorrect: true},
				}
			},
			field: "sections[0].questions[0].options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRawQuiz()
			tt.mutate(raw)

			_, errs := Normalize(raw)
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected an error on field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestNormalize_StatusDefaultsToDraft(t *testing.T) {
	raw := validRawQuiz()
	raw.Status = ""

	quiz, errs := Normalize(raw)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if quiz.Status != models.StatusDraft {
		t.Errorf("expected Draft, got %s", quiz.Status)
	}
}
