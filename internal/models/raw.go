package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Raw* mirror the heterogeneous shapes quiz documents have accumulated over
// time: sectioned documents, legacy flat question lists, string-typed numeric
// fields, missing ids. They are what the store yields and what inbound
// payloads bind to; nothing past the normalizer ever sees them.

type RawOption struct {
	ID        string   `bson:"id,omitempty" json:"id,omitempty"`
	Text      string   `bson:"text,omitempty" json:"text,omitempty"`
	ImageURL  string   `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImageKey  string   `bson:"imageKey,omitempty" json:"imageKey,omitempty"`
	IsCorrect bool     `bson:"isCorrect,omitempty" json:"isCorrect,omitempty"`
	Tags      []string `bson:"aiTags,omitempty" json:"aiTags,omitempty"`
}

type RawQuestion struct {
	ID            string      `bson:"id,omitempty" json:"id,omitempty"`
	Text          string      `bson:"text,omitempty" json:"text,omitempty"`
	ImageURL      string      `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImageKey      string      `bson:"imageKey,omitempty" json:"imageKey,omitempty"`
	Marks         *FlexNumber `bson:"marks,omitempty" json:"marks,omitempty"`
	NegativeMarks *FlexNumber `bson:"negativeMarks,omitempty" json:"negativeMarks,omitempty"`
	Options       []RawOption `bson:"options,omitempty" json:"options,omitempty"`
	Explanation   string      `bson:"explanation,omitempty" json:"explanation,omitempty"`
	Tags          []string    `bson:"aiTags,omitempty" json:"aiTags,omitempty"`
}

type RawSection struct {
	ID            string        `bson:"id,omitempty" json:"id,omitempty"`
	Name          string        `bson:"name,omitempty" json:"name,omitempty"`
	QuestionLimit *FlexNumber   `bson:"questionLimit,omitempty" json:"questionLimit,omitempty"`
	TimerMinutes  *FlexNumber   `bson:"timerMinutes,omitempty" json:"timerMinutes,omitempty"`
	Questions     []RawQuestion `bson:"questions,omitempty" json:"questions,omitempty"`
}

// RawQuiz carries both the canonical sectioned shape and the legacy flat
// question list; at most one of Sections/Questions is expected to be set.
type RawQuiz struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Title        string             `bson:"title,omitempty" json:"title,omitempty"`
	TestType     string             `bson:"testType,omitempty" json:"testType,omitempty"`
	ClassID      string             `bson:"classId,omitempty" json:"classId,omitempty"`
	SubjectID    string             `bson:"subjectId,omitempty" json:"subjectId,omitempty"`
	ChapterID    string             `bson:"chapterId,omitempty" json:"chapterId,omitempty"`
	ExamID       string             `bson:"associatedExamId,omitempty" json:"associatedExamId,omitempty"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	TimerMinutes *FlexNumber        `bson:"overallTimerMinutes,omitempty" json:"overallTimerMinutes,omitempty"`
	Sections     []RawSection       `bson:"sections,omitempty" json:"sections,omitempty"`
	Questions    []RawQuestion      `bson:"questions,omitempty" json:"questions,omitempty"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// StatusOnly reports whether the payload is the narrow "change status only"
// update: a status field and nothing else of substance.
func (r *RawQuiz) StatusOnly() bool {
	return r.Status != "" && r.Title == "" && len(r.Sections) == 0 && len(r.Questions) == 0
}

// StorageKeys collects every object store key referenced by the document,
// walking both the sectioned and the legacy flat shape. Works on documents
// the normalizer would reject, which matters for cleanup on delete.
func (r *RawQuiz) StorageKeys() []string {
	var keys []string
	collect := func(questions []RawQuestion) {
		for _, q := range questions {
			if q.ImageKey != "" {
				keys = append(keys, q.ImageKey)
			}
			for _, o := range q.Options {
				if o.ImageKey != "" {
					keys = append(keys, o.ImageKey)
				}
			}
		}
	}
	for _, s := range r.Sections {
		collect(s.Questions)
	}
	collect(r.Questions)
	return keys
}
