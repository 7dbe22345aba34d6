package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizbank/admin-service/internal/cache"
	"github.com/quizbank/admin-service/internal/events"
	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
	"github.com/quizbank/admin-service/internal/storage"
	"github.com/quizbank/admin-service/internal/validator"
)

// quizService orchestrates the quiz write path: normalize, resolve images,
// persist, then hand asset cleanup, backlink reconciliation, event publishing
// and cache invalidation to the background runner. The document write is the
// commit point; everything after it is best effort.
type quizService struct {
	repo      repositories.Repository
	assets    *assetManager
	integrity *integrityCoordinator
	publisher events.EventPublisher
	cacheMgr  *cache.CacheManager
	runner    TaskRunner
	logger    *slog.Logger
}

func NewQuizService(
	repo repositories.Repository,
	store storage.BlobStore,
	publisher events.EventPublisher,
	cacheMgr *cache.CacheManager,
	runner TaskRunner,
	logger *slog.Logger,
) QuizService {
	return &quizService{
		repo:      repo,
		assets:    newAssetManager(store, logger),
		integrity: newIntegrityCoordinator(repo, logger),
		publisher: publisher,
		cacheMgr:  cacheMgr,
		runner:    runner,
		logger:    logger,
	}
}

func (s *quizService) Create(ctx context.Context, payload *QuizPayload) (*CreateQuizResult, error) {
	// The id is allocated before upload so inline images land in the quiz's
	// own storage folder.
	payload.ID = primitive.NewObjectID()
	payload.Status = string(models.StatusDraft)
	now := time.Now().UTC()
	payload.CreatedAt = now
	payload.UpdatedAt = now

	quiz, errs := Normalize(payload)
	if errs != nil {
		return nil, errs
	}

	kept, uploaded, err := s.assets.resolveForPersist(ctx, quiz)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		// The document never landed; the uploads belonging to it are orphans.
		s.rollbackUploads(quiz, kept)
		return nil, s.storeErr(err)
	}

	s.afterWrite(quiz, events.QuizCreated, nil, func(ctx context.Context) {
		s.integrity.reconcileCreate(ctx, quiz)
	})

	return &CreateQuizResult{Quiz: quiz, UploadedImages: uploaded}, nil
}

func (s *quizService) GetByID(ctx context.Context, id string) (*QuizResponse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var cached QuizResponse
	if err := s.cacheMgr.Quiz.Get(ctx, "id:"+id, &cached); err == nil {
		return &cached, nil
	}

	raw, err := s.repo.Quiz().GetRaw(ctx, oid)
	if err != nil {
		return nil, s.storeErr(err)
	}

	resp := s.toResponse(raw)

	if err := s.cacheMgr.Quiz.Set(ctx, "id:"+id, resp, cache.QuizCacheConfig.TTL); err != nil {
		s.logger.Warn("quiz cache set failed", "id", id, "error", err)
	}
	return resp, nil
}

func (s *quizService) Update(ctx context.Context, id string, payload *QuizPayload) (*QuizResponse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	old, err := s.repo.Quiz().GetRaw(ctx, oid)
	if err != nil {
		return nil, s.storeErr(err)
	}

	if payload.StatusOnly() {
		return s.updateStatus(ctx, oid, old, payload.Status)
	}

	payload.ID = oid
	payload.CreatedAt = old.CreatedAt
	if payload.Status == "" {
		payload.Status = old.Status
	}
	payload.UpdatedAt = time.Now().UTC()

	quiz, errs := Normalize(payload)
	if errs != nil {
		return nil, errs
	}

	// A hosted reference resent as a bare URL must recover its key before the
	// cleanup diff, or the diff would delete an object the document still uses.
	backfillKeys(quiz, old)

	kept, _, err := s.assets.resolveForPersist(ctx, quiz)
	if err != nil {
		return nil, err
	}

	// Computed before the write but acted on only after it succeeds.
	orphaned := diffForCleanup(old.StorageKeys(), kept)

	if err := s.repo.Quiz().Replace(ctx, quiz); err != nil {
		s.rollbackUploads(quiz, kept)
		return nil, s.storeErr(err)
	}

	oldAssoc, newAssoc := associationsOfRaw(old), associationsOf(quiz)
	s.afterWrite(quiz, events.QuizUpdated, orphaned, func(ctx context.Context) {
		s.integrity.reconcileUpdate(ctx, id, oldAssoc, newAssoc)
	})

	return &QuizResponse{Quiz: quiz, QuestionCount: quiz.QuestionCount()}, nil
}

// updateStatus is the narrow path for a payload carrying only a status: the
// stored document is not rewritten or re-validated, only its status flips.
func (s *quizService) updateStatus(ctx context.Context, oid primitive.ObjectID, old *models.RawQuiz, status string) (*QuizResponse, error) {
	newStatus := models.QuizStatus(status)
	if !newStatus.Valid() {
		return nil, validator.ValidationErrors{{
			Field:   "status",
			Message: "status must be one of Draft, Published, Private",
			Value:   status,
			Rule:    "quiz_status",
		}}
	}

	now := time.Now().UTC()
	if err := s.repo.Quiz().UpdateStatus(ctx, oid, newStatus, now); err != nil {
		return nil, s.storeErr(err)
	}

	old.Status = string(newStatus)
	old.UpdatedAt = now
	resp := s.toResponse(old)

	quizID := oid.Hex()
	s.runner.Submit("quiz.status."+quizID, func(ctx context.Context) {
		s.publish(ctx, events.NewEvent(events.QuizStatusChanged, events.QuizEvent{
			QuizID: quizID,
			Status: string(newStatus),
		}))
		cache.InvalidateQuizCache(ctx, s.cacheMgr, quizID)
	})

	return resp, nil
}

func (s *quizService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	old, err := s.repo.Quiz().GetRaw(ctx, oid)
	if err != nil {
		return s.storeErr(err)
	}

	if err := s.repo.Quiz().Delete(ctx, oid); err != nil {
		return s.storeErr(err)
	}

	keys := old.StorageKeys()
	assoc := associationsOfRaw(old)
	s.runner.Submit("quiz.delete."+id, func(ctx context.Context) {
		s.assets.deleteAssets(ctx, keys)
		s.integrity.reconcileDelete(ctx, id, assoc)
		s.publish(ctx, events.NewEvent(events.QuizDeleted, events.QuizEvent{QuizID: id}))
		cache.InvalidateQuizCache(ctx, s.cacheMgr, id)
	})

	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	cacheKey := listCacheKey(filters)
	var cached QuizListResponse
	if err := s.cacheMgr.List.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	raws, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, s.storeErr(err)
	}

	resp := &QuizListResponse{
		Quizzes: make([]*QuizResponse, 0, len(raws)),
		Total:   total,
		Page:    filters.Offset/filters.Limit + 1,
		Size:    filters.Limit,
	}
	for _, raw := range raws {
		resp.Quizzes = append(resp.Quizzes, s.toResponse(raw))
	}

	if err := s.cacheMgr.List.Set(ctx, cacheKey, resp, cache.ListCacheConfig.TTL); err != nil {
		s.logger.Warn("list cache set failed", "error", err)
	}
	return resp, nil
}

// toResponse normalizes a stored document for reading. Documents that predate
// today's validation rules are served as-is after shape adaptation; rejecting
// them would make old data unreadable.
func (s *quizService) toResponse(raw *models.RawQuiz) *QuizResponse {
	quiz, errs := Normalize(raw)
	if errs != nil {
		s.logger.Warn("stored quiz fails current validation, serving anyway",
			"id", raw.ID.Hex(), "issues", len(errs))
	}
	return &QuizResponse{Quiz: quiz, QuestionCount: quiz.QuestionCount()}
}

// afterWrite dispatches the shared post-commit work: orphan cleanup, backlink
// reconciliation, event publishing, cache invalidation.
func (s *quizService) afterWrite(quiz *models.Quiz, eventType string, orphaned []string, reconcile func(ctx context.Context)) {
	quizID := quiz.ID.Hex()
	event := events.NewEvent(eventType, events.QuizEvent{
		QuizID:   quizID,
		Title:    quiz.Title,
		TestType: string(quiz.TestType),
		Status:   string(quiz.Status),
	})
	s.runner.Submit("quiz.write."+quizID, func(ctx context.Context) {
		s.assets.deleteAssets(ctx, orphaned)
		reconcile(ctx)
		s.publish(ctx, event)
		cache.InvalidateQuizCache(ctx, s.cacheMgr, quizID)
	})
}

// rollbackUploads removes the objects uploaded for a write that failed to
// persist. Best effort; a missed rollback leaves an orphan, not a corrupt
// document.
func (s *quizService) rollbackUploads(quiz *models.Quiz, kept map[string]bool) {
	keys := freshKeys(quiz, kept)
	if len(keys) == 0 {
		return
	}
	s.runner.Submit("quiz.rollback."+quiz.ID.Hex(), func(ctx context.Context) {
		s.assets.deleteAssets(ctx, keys)
	})
}

func (s *quizService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "type", event.Type, "error", err)
	}
}

func (s *quizService) storeErr(err error) error {
	if err == repositories.ErrNotFound {
		return ErrQuizNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func listCacheKey(f repositories.QuizFilters) string {
	status, testType := "", ""
	if f.Status != nil {
		status = string(*f.Status)
	}
	if f.TestType != nil {
		testType = string(*f.TestType)
	}
	return fmt.Sprintf("status=%s:type=%s:limit=%d:offset=%d", status, testType, f.Limit, f.Offset)
}
