package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quizbank/admin-service/internal/cache"
	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
)

// dashboardService aggregates counts for the admin landing page.
type dashboardService struct {
	repo     repositories.Repository
	cacheMgr *cache.CacheManager
	logger   *slog.Logger
}

func NewDashboardService(repo repositories.Repository, cacheMgr *cache.CacheManager, logger *slog.Logger) DashboardService {
	return &dashboardService{repo: repo, cacheMgr: cacheMgr, logger: logger}
}

func (s *dashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	const statsKey = "dashboard"
	var cached DashboardStats
	if err := s.cacheMgr.Stats.Get(ctx, statsKey, &cached); err == nil {
		return &cached, nil
	}

	stats := &DashboardStats{QuizzesByState: make(map[string]int64)}

	total, err := s.repo.Quiz().Count(ctx, repositories.QuizFilters{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	stats.TotalQuizzes = total

	for _, status := range []models.QuizStatus{models.StatusDraft, models.StatusPublished, models.StatusPrivate} {
		st := status
		count, err := s.repo.Quiz().Count(ctx, repositories.QuizFilters{Status: &st})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		stats.QuizzesByState[string(status)] = count
	}

	counts := []struct {
		kind models.TaxonomyKind
		dest *int64
	}{
		{models.KindExam, &stats.TotalExams},
		{models.KindChapter, &stats.TotalChapters},
		{models.KindClass, &stats.TotalClasses},
		{models.KindSubject, &stats.TotalSubjects},
	}
	for _, c := range counts {
		n, err := s.repo.Taxonomy(c.kind).Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		*c.dest = n
	}

	const recentLimit = 5
	raws, _, err := s.repo.Quiz().List(ctx, repositories.QuizFilters{Limit: recentLimit})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	stats.RecentQuizzes = make([]*QuizResponse, 0, len(raws))
	for _, raw := range raws {
		quiz, errs := Normalize(raw)
		if errs != nil {
			s.logger.Warn("dashboard serving quiz that fails current validation",
				"id", raw.ID.Hex(), "issues", len(errs))
		}
		stats.RecentQuizzes = append(stats.RecentQuizzes, &QuizResponse{
			Quiz:          quiz,
			QuestionCount: quiz.QuestionCount(),
		})
	}

	if err := s.cacheMgr.Stats.Set(ctx, statsKey, stats, cache.StatsCacheConfig.TTL); err != nil {
		s.logger.Warn("stats cache set failed", "error", err)
	}
	return stats, nil
}
