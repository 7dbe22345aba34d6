package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
)

// integrityCoordinator maintains the derived backlink arrays on exams,
// chapters, classes and subjects after a quiz write. It runs after the
// primary write succeeds, never before. Every mutation is add-if-absent /
// remove-if-present, so a retried pass is always safe, and every failure is
// logged and swallowed: backlinks are an index, never the source of truth.
type integrityCoordinator struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func newIntegrityCoordinator(repo repositories.Repository, logger *slog.Logger) *integrityCoordinator {
	return &integrityCoordinator{repo: repo, logger: logger}
}

// associations is the subset of quiz fields the coordinator reconciles.
type associations struct {
	ClassID   string
	SubjectID string
	ChapterID string
	ExamID    string
}

func associationsOf(q *models.Quiz) associations {
	return associations{
		ClassID:   q.ClassID,
		SubjectID: q.SubjectID,
		ChapterID: q.ChapterID,
		ExamID:    q.ExamID,
	}
}

func associationsOfRaw(r *models.RawQuiz) associations {
	return associations{
		ClassID:   r.ClassID,
		SubjectID: r.SubjectID,
		ChapterID: r.ChapterID,
		ExamID:    r.ExamID,
	}
}

// reconcileCreate adds the new quiz to every backlink index its association
// fields point at.
func (c *integrityCoordinator) reconcileCreate(ctx context.Context, quiz *models.Quiz) {
	c.reconcile(ctx, quiz.ID.Hex(), associations{}, associationsOf(quiz))
}

// reconcileUpdate moves backlinks from the quiz's previous associations to
// its new ones. Unchanged fields are re-added, which is a no-op under
// add-to-set semantics and heals any previously missed pass.
func (c *integrityCoordinator) reconcileUpdate(ctx context.Context, quizID string, old, new associations) {
	c.reconcile(ctx, quizID, old, new)
}

// reconcileDelete removes the quiz from the exam and chapter indexes. It
// takes bare associations rather than a normalized quiz so that deleting a
// document too malformed to normalize still cleans up its backlinks.
func (c *integrityCoordinator) reconcileDelete(ctx context.Context, quizID string, assoc associations) {
	c.removeRef(ctx, models.KindExam, assoc.ExamID, repositories.FieldQuizIDs, quizID)
	c.removeRef(ctx, models.KindChapter, assoc.ChapterID, repositories.FieldQuizIDs, quizID)
}

// reconcile applies remove-old / add-new symmetrically across all four
// backlink fields.
func (c *integrityCoordinator) reconcile(ctx context.Context, quizID string, old, new associations) {
	// Exam.quizIds
	if old.ExamID != new.ExamID {
		c.removeRef(ctx, models.KindExam, old.ExamID, repositories.FieldQuizIDs, quizID)
	}
	c.addRef(ctx, models.KindExam, new.ExamID, repositories.FieldQuizIDs, quizID)

	// Chapter.quizIds
	if old.ChapterID != new.ChapterID {
		c.removeRef(ctx, models.KindChapter, old.ChapterID, repositories.FieldQuizIDs, quizID)
	}
	c.addRef(ctx, models.KindChapter, new.ChapterID, repositories.FieldQuizIDs, quizID)

	// Class.associatedSubjectIds: maintained only when both ids are present.
	if old.ClassID != new.ClassID || old.SubjectID != new.SubjectID {
		if old.ClassID != "" && old.SubjectID != "" {
			c.removeRef(ctx, models.KindClass, old.ClassID, repositories.FieldSubjectIDs, old.SubjectID)
		}
	}
	if new.ClassID != "" && new.SubjectID != "" {
		c.addRef(ctx, models.KindClass, new.ClassID, repositories.FieldSubjectIDs, new.SubjectID)
	}

	// Subject.associatedChapterIds
	if old.SubjectID != new.SubjectID || old.ChapterID != new.ChapterID {
		if old.SubjectID != "" && old.ChapterID != "" {
			c.removeRef(ctx, models.KindSubject, old.SubjectID, repositories.FieldChapterIDs, old.ChapterID)
		}
	}
	if new.SubjectID != "" && new.ChapterID != "" {
		c.addRef(ctx, models.KindSubject, new.SubjectID, repositories.FieldChapterIDs, new.ChapterID)
	}
}

func (c *integrityCoordinator) addRef(ctx context.Context, kind models.TaxonomyKind, hexID, field, value string) {
	id, ok := c.parseID(kind, hexID)
	if !ok {
		return
	}
	if err := c.repo.Taxonomy(kind).AddRef(ctx, id, field, value); err != nil {
		c.logger.Error("backlink add failed",
			"kind", string(kind), "id", hexID, "field", field, "value", value, "error", err)
	}
}

func (c *integrityCoordinator) removeRef(ctx context.Context, kind models.TaxonomyKind, hexID, field, value string) {
	id, ok := c.parseID(kind, hexID)
	if !ok {
		return
	}
	if err := c.repo.Taxonomy(kind).RemoveRef(ctx, id, field, value); err != nil {
		c.logger.Error("backlink remove failed",
			"kind", string(kind), "id", hexID, "field", field, "value", value, "error", err)
	}
}

func (c *integrityCoordinator) parseID(kind models.TaxonomyKind, hexID string) (primitive.ObjectID, bool) {
	if hexID == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		c.logger.Warn("skipping backlink for malformed id", "kind", string(kind), "id", hexID)
		return primitive.NilObjectID, false
	}
	return id, true
}
