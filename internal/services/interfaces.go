package services

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

// QuizPayload is the inbound create/update body. It is the raw document
// shape: the normalizer turns it canonical before anything else touches it.
type QuizPayload = models.RawQuiz

type QuizResponse struct {
	*models.Quiz
	QuestionCount int `json:"question_count"`
}

type QuizListResponse struct {
	Quizzes []*QuizResponse `json:"quizzes"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
}

type CreateQuizResult struct {
	Quiz           *models.Quiz `json:"quiz"`
	UploadedImages int          `json:"uploaded_images"`
}

type TaxonomyResponse struct {
	*models.NamedEntity
}

type DashboardStats struct {
	TotalQuizzes   int64            `json:"total_quizzes"`
	QuizzesByState map[string]int64 `json:"quizzes_by_status"`
	TotalExams     int64            `json:"total_exams"`
	TotalChapters  int64            `json:"total_chapters"`
	TotalClasses   int64            `json:"total_classes"`
	TotalSubjects  int64            `json:"total_subjects"`
	RecentQuizzes  []*QuizResponse  `json:"recent_quizzes"`
}

// ===== SERVICE INTERFACES =====

type QuizService interface {
	Create(ctx context.Context, payload *QuizPayload) (*CreateQuizResult, error)
	GetByID(ctx context.Context, id string) (*QuizResponse, error)
	// Update replaces the stored document wholesale; a payload that is only
	// {status} takes the narrow status-only path instead.
	Update(ctx context.Context, id string, payload *QuizPayload) (*QuizResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error)
}

type TaxonomyService interface {
	Create(ctx context.Context, kind models.TaxonomyKind, name string) (*TaxonomyResponse, error)
	GetByID(ctx context.Context, kind models.TaxonomyKind, id string) (*TaxonomyResponse, error)
	List(ctx context.Context, kind models.TaxonomyKind) ([]*TaxonomyResponse, error)
	Rename(ctx context.Context, kind models.TaxonomyKind, id, name string) (*TaxonomyResponse, error)
	Delete(ctx context.Context, kind models.TaxonomyKind, id string) error
}

type ExportService interface {
	// ExportQuizzes renders the whole quiz bank as an xlsx workbook, one row
	// per question.
	ExportQuizzes(ctx context.Context) (*excelize.File, error)
}

type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Quiz() QuizService
	Taxonomy() TaxonomyService
	Export() ExportService
	Dashboard() DashboardService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
