package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizStatus string

const (
	StatusDraft     QuizStatus = "Draft"
	StatusPublished QuizStatus = "Published"
	StatusPrivate   QuizStatus = "Private"
)

func (s QuizStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusPrivate:
		return true
	}
	return false
}

type TestType string

const (
	TestTypePreviousYear TestType = "Previous Year"
	TestTypeMock         TestType = "Mock"
	TestTypePractice     TestType = "Practice Test"
)

func (t TestType) Valid() bool {
	switch t {
	case TestTypePreviousYear, TestTypeMock, TestTypePractice:
		return true
	}
	return false
}

// Option is owned by its Question; its ID is unique within that question only.
type Option struct {
	ID        string   `bson:"id" json:"id" validate:"required"`
	Text      string   `bson:"text" json:"text" validate:"max=2000"`
	ImageURL  string   `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImageKey  string   `bson:"imageKey,omitempty" json:"imageKey,omitempty"`
	IsCorrect bool     `bson:"isCorrect" json:"isCorrect"`
	Tags      []string `bson:"aiTags,omitempty" json:"aiTags,omitempty" validate:"omitempty,max=10,dive,max=50"`
}

type Question struct {
	ID            string   `bson:"id" json:"id" validate:"required"`
	Text          string   `bson:"text" json:"text" validate:"max=5000"`
	ImageURL      string   `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImageKey      string   `bson:"imageKey,omitempty" json:"imageKey,omitempty"`
	Marks         float64  `bson:"marks" json:"marks"`
	NegativeMarks float64  `bson:"negativeMarks" json:"negativeMarks"`
	Options       []Option `bson:"options" json:"options" validate:"min=1,max=5,dive"`
	Explanation   string   `bson:"explanation,omitempty" json:"explanation,omitempty" validate:"max=5000"`
	Tags          []string `bson:"aiTags,omitempty" json:"aiTags,omitempty" validate:"omitempty,max=10,dive,max=50"`
}

type Section struct {
	ID            string     `bson:"id" json:"id" validate:"required"`
	Name          string     `bson:"name" json:"name" validate:"required,max=200"`
	QuestionLimit *int       `bson:"questionLimit,omitempty" json:"questionLimit,omitempty"`
	TimerMinutes  *int       `bson:"timerMinutes,omitempty" json:"timerMinutes,omitempty"`
	Questions     []Question `bson:"questions" json:"questions" validate:"min=1,dive"`
}

// Quiz is the root aggregate. Sections, questions and options have no
// identity outside the quiz document they are embedded in.
type Quiz struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title" validate:"required,max=300"`
	TestType TestType           `bson:"testType" json:"testType" validate:"required,test_type"`

	// ClassID/SubjectID/ChapterID are meaningful only for Practice quizzes;
	// ExamID only for Mock / Previous Year.
	ClassID   string `bson:"classId,omitempty" json:"classId,omitempty"`
	SubjectID string `bson:"subjectId,omitempty" json:"subjectId,omitempty"`
	ChapterID string `bson:"chapterId,omitempty" json:"chapterId,omitempty"`
	ExamID    string `bson:"associatedExamId,omitempty" json:"associatedExamId,omitempty"`

	Tags         []string   `bson:"tags,omitempty" json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	TimerMinutes *int       `bson:"overallTimerMinutes,omitempty" json:"overallTimerMinutes,omitempty"`
	Sections     []Section  `bson:"sections" json:"sections" validate:"min=1,dive"`
	Status       QuizStatus `bson:"status" json:"status" validate:"required,quiz_status"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// StorageKeys returns every object-store key reachable from the quiz.
func (q *Quiz) StorageKeys() []string {
	var keys []string
	for i := range q.Sections {
		for j := range q.Sections[i].Questions {
			question := &q.Sections[i].Questions[j]
			if question.ImageKey != "" {
				keys = append(keys, question.ImageKey)
			}
			for k := range question.Options {
				if question.Options[k].ImageKey != "" {
					keys = append(keys, question.Options[k].ImageKey)
				}
			}
		}
	}
	return keys
}

// QuestionCount counts questions across all sections.
func (q *Quiz) QuestionCount() int {
	n := 0
	for i := range q.Sections {
		n += len(q.Sections[i].Questions)
	}
	return n
}
