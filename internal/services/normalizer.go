package services

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/validator"
)

// LegacySectionName is the synthetic section a flat question list is wrapped
// into.
const LegacySectionName = "Main Section"

const defaultMarks = 1

// Normalize adapts a stored or inbound quiz document into the canonical
// Section → Question → Option shape. It is pure (no I/O) and idempotent:
// normalizing an already-canonical document changes nothing, existing ids
// included.
//
// Shape handling:
//   - a document with a sections array passes through with ids backfilled and
//     numeric fields defaulted/coerced;
//   - a legacy document with a flat questions array is wrapped into one
//     synthetic section;
//   - a document with neither yields an empty section list, which fails
//     validation below.
func Normalize(raw *models.RawQuiz) (*models.Quiz, validator.ValidationErrors) {
	quiz := &models.Quiz{
		ID:        raw.ID,
		Title:     strings.TrimSpace(raw.Title),
		TestType:  models.TestType(raw.TestType),
		ClassID:   raw.ClassID,
		SubjectID: raw.SubjectID,
		ChapterID: raw.ChapterID,
		ExamID:    raw.ExamID,
		Tags:      raw.Tags,
		Status:    models.QuizStatus(raw.Status),
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	if quiz.Status == "" {
		quiz.Status = models.StatusDraft
	}

	var errs validator.ValidationErrors

	if raw.TimerMinutes != nil {
		quiz.TimerMinutes = intField(raw.TimerMinutes, "overallTimerMinutes", &errs)
	}

	switch {
	case len(raw.Sections) > 0:
		quiz.Sections = make([]models.Section, 0, len(raw.Sections))
		for i, rs := range raw.Sections {
			quiz.Sections = append(quiz.Sections, normalizeSection(rs, i, &errs))
		}
	case len(raw.Questions) > 0:
		// Legacy flat shape: one synthetic section, original question order.
		quiz.Sections = []models.Section{normalizeSection(models.RawSection{
			Name:      LegacySectionName,
			Questions: raw.Questions,
		}, 0, &errs)}
	}

	errs = append(errs, validateQuiz(quiz)...)
	if len(errs) > 0 {
		// The adapted quiz is returned alongside the errors so read paths can
		// still serve stored documents that predate current rules.
		return quiz, errs
	}
	return quiz, nil
}

func normalizeSection(rs models.RawSection, idx int, errs *validator.ValidationErrors) models.Section {
	section := models.Section{
		ID:   rs.ID,
		Name: strings.TrimSpace(rs.Name),
	}
	if section.ID == "" {
		section.ID = primitive.NewObjectID().Hex()
	}
	if rs.QuestionLimit != nil {
		section.QuestionLimit = intField(rs.QuestionLimit, fmt.Sprintf("sections[%d].questionLimit", idx), errs)
	}
	if rs.TimerMinutes != nil {
		section.TimerMinutes = intField(rs.TimerMinutes, fmt.Sprintf("sections[%d].timerMinutes", idx), errs)
	}

	section.Questions = make([]models.Question, 0, len(rs.Questions))
	for qi, rq := range rs.Questions {
		section.Questions = append(section.Questions, normalizeQuestion(rq, idx, qi, errs))
	}
	return section
}

func normalizeQuestion(rq models.RawQuestion, sIdx, qIdx int, errs *validator.ValidationErrors) models.Question {
	question := models.Question{
		ID:          rq.ID,
		Text:        rq.Text,
		ImageURL:    rq.ImageURL,
		ImageKey:    rq.ImageKey,
		Marks:       defaultMarks,
		Explanation: rq.Explanation,
		Tags:        rq.Tags,
	}
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}

	field := func(name string) string {
		return fmt.Sprintf("sections[%d].questions[%d].%s", sIdx, qIdx, name)
	}

	if rq.Marks != nil {
		question.Marks = rq.Marks.Float()
	}
	if question.Marks <= 0 {
		*errs = append(*errs, validator.ValidationError{
			Field:   field("marks"),
			Message: "must be a positive number",
			Value:   question.Marks,
		})
	}
	if rq.NegativeMarks != nil {
		question.NegativeMarks = rq.NegativeMarks.Float()
	}
	if question.NegativeMarks < 0 {
		*errs = append(*errs, validator.ValidationError{
			Field:   field("negativeMarks"),
			Message: "must not be negative",
			Value:   question.NegativeMarks,
		})
	}

	question.Options = make([]models.Option, 0, len(rq.Options))
	hasCorrect := false
	hasContent := false
	for _, ro := range rq.Options {
		opt := models.Option{
			ID:        ro.ID,
			Text:      ro.Text,
			ImageURL:  ro.ImageURL,
			ImageKey:  ro.ImageKey,
			IsCorrect: ro.IsCorrect,
			Tags:      ro.Tags,
		}
		if opt.ID == "" {
			opt.ID = primitive.NewObjectID().Hex()
		}
		if opt.IsCorrect {
			hasCorrect = true
		}
		if strings.TrimSpace(opt.Text) != "" || opt.ImageURL != "" {
			hasContent = true
		}
		question.Options = append(question.Options, opt)
	}

	if len(question.Options) == 0 || len(question.Options) > 5 {
		*errs = append(*errs, validator.ValidationError{
			Field:   field("options"),
			Message: "must contain between 1 and 5 options",
			Value:   len(question.Options),
		})
		return question
	}
	if !hasCorrect {
		*errs = append(*errs, validator.ValidationError{
			Field:   field("options"),
			Message: "must mark at least one option as correct",
		})
	}
	if !hasContent {
		*errs = append(*errs, validator.ValidationError{
			Field:   field("options"),
			Message: "must have at least one option with text or an image",
		})
	}
	return question
}

func validateQuiz(quiz *models.Quiz) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if quiz.Title == "" {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "is required"})
	}
	if !quiz.TestType.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "testType",
			Message: "must be Previous Year, Mock, or Practice Test",
			Value:   string(quiz.TestType),
		})
	}
	if !quiz.Status.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "must be Draft, Published, or Private",
			Value:   string(quiz.Status),
		})
	}
	if len(quiz.Sections) == 0 {
		errs = append(errs, validator.ValidationError{Field: "sections", Message: "must contain at least one section"})
	}
	for i, s := range quiz.Sections {
		if s.Name == "" {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("sections[%d].name", i),
				Message: "is required",
			})
		}
		if len(s.Questions) == 0 {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("sections[%d].questions", i),
				Message: "must contain at least one question",
			})
		}
	}
	return errs
}

func intField(n *models.FlexNumber, field string, errs *validator.ValidationErrors) *int {
	f := n.Float()
	if f < 0 {
		*errs = append(*errs, validator.ValidationError{
			Field:   field,
			Message: "must not be negative",
			Value:   f,
		})
		return nil
	}
	v := int(f)
	return &v
}
