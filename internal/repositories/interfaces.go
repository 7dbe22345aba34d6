package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizbank/admin-service/internal/models"
)

// ErrNotFound is returned by every repository when the requested document
// does not exist.
var ErrNotFound = errors.New("document not found")

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status   *models.QuizStatus `json:"status"`
	TestType *models.TestType   `json:"test_type"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// ===== BACKLINK FIELDS =====

// Backlink array field names on taxonomy documents. Every backlink mutation
// goes through AddRef/RemoveRef with one of these, so a retried reconciliation
// pass is always a no-op ($addToSet / $pull semantics).
const (
	FieldQuizIDs    = "quizIds"
	FieldSubjectIDs = "associatedSubjectIds"
	FieldChapterIDs = "associatedChapterIds"
)

// ===== REPOSITORY INTERFACES =====

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	// GetRaw returns the stored document without shape adaptation; callers
	// run it through the normalizer before use.
	GetRaw(ctx context.Context, id primitive.ObjectID) (*models.RawQuiz, error)
	Replace(ctx context.Context, quiz *models.Quiz) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.QuizStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filters QuizFilters) ([]*models.RawQuiz, int64, error)
	// Count honors the status/testType filters; Limit and Offset are ignored.
	Count(ctx context.Context, filters QuizFilters) (int64, error)
}

// TaxonomyRepository backs one flat named collection (exams, chapters,
// classes or subjects).
type TaxonomyRepository interface {
	Create(ctx context.Context, entity *models.NamedEntity) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.NamedEntity, error)
	// GetByName matches the stored (upper-cased) name exactly.
	GetByName(ctx context.Context, name string) (*models.NamedEntity, error)
	// ExistsOtherWithName reports whether a different document already holds
	// the name; used by rename.
	ExistsOtherWithName(ctx context.Context, name string, excludeID primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]*models.NamedEntity, error)
	Rename(ctx context.Context, id primitive.ObjectID, name string, updatedAt time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)

	// AddRef / RemoveRef maintain a backlink array field. Both are idempotent
	// and both succeed silently when the target document is absent.
	AddRef(ctx context.Context, id primitive.ObjectID, field, value string) error
	RemoveRef(ctx context.Context, id primitive.ObjectID, field, value string) error
}

// Repository aggregates access to all collections.
type Repository interface {
	Quiz() QuizRepository
	Taxonomy(kind models.TaxonomyKind) TaxonomyRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
