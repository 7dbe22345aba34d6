package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/quizbank/admin-service/internal/repositories"
)

// exportService renders the quiz bank as an xlsx workbook for offline review.
type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var exportHeaders = []string{
	"quiz_id", "quiz_title", "test_type", "status",
	"section", "question", "marks", "negative_marks",
	"options", "correct_options", "explanation", "created_at",
}

func (s *exportService) ExportQuizzes(ctx context.Context) (*excelize.File, error) {
	const exportLimit = 10000
	raws, _, err := s.repo.Quiz().List(ctx, repositories.QuizFilters{Limit: exportLimit})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, raw := range raws {
		quiz, errs := Normalize(raw)
		if errs != nil {
			s.logger.Warn("exporting quiz that fails current validation",
				"id", raw.ID.Hex(), "issues", len(errs))
		}
		for _, section := range quiz.Sections {
			for _, q := range section.Questions {
				var options, correct []string
				for _, o := range q.Options {
					options = append(options, o.Text)
					if o.IsCorrect {
						correct = append(correct, o.Text)
					}
				}
				values := []any{
					quiz.ID.Hex(),
					quiz.Title,
					string(quiz.TestType),
					string(quiz.Status),
					section.Name,
					q.Text,
					q.Marks,
					q.NegativeMarks,
					strings.Join(options, " | "),
					strings.Join(correct, " | "),
					q.Explanation,
					quiz.CreatedAt.Format("2006-01-02 15:04:05"),
				}
				for col, v := range values {
					cell, _ := excelize.CoordinatesToCellName(col+1, row)
					_ = f.SetCellValue(sheet, cell, v)
				}
				row++
			}
		}
	}
	_ = f.SetColWidth(sheet, "A", "L", 24)

	return f, nil
}
