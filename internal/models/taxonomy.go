package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NamedEntity is the shared document shape of the flat taxonomy collections
// (exams, chapters, classes, subjects). Names are stored trimmed and
// upper-cased and are unique per collection.
//
// The backlink arrays are derived convenience indexes maintained after quiz
// writes; they are never the source of truth (a quiz's own association fields
// are) and only the field relevant to a given collection is ever populated.
type NamedEntity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`

	QuizIDs    []string `bson:"quizIds,omitempty" json:"quizIds,omitempty"`
	SubjectIDs []string `bson:"associatedSubjectIds,omitempty" json:"associatedSubjectIds,omitempty"`
	ChapterIDs []string `bson:"associatedChapterIds,omitempty" json:"associatedChapterIds,omitempty"`
}

// TaxonomyKind identifies one of the flat taxonomy collections.
type TaxonomyKind string

const (
	KindExam    TaxonomyKind = "exam"
	KindChapter TaxonomyKind = "chapter"
	KindClass   TaxonomyKind = "class"
	KindSubject TaxonomyKind = "subject"
)

// Collection returns the Mongo collection name for the kind.
func (k TaxonomyKind) Collection() string {
	switch k {
	case KindExam:
		return "exams"
	case KindChapter:
		return "chapters"
	case KindClass:
		return "classes"
	case KindSubject:
		return "subjects"
	}
	return string(k)
}

func (k TaxonomyKind) Valid() bool {
	switch k {
	case KindExam, KindChapter, KindClass, KindSubject:
		return true
	}
	return false
}
