package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizbank/admin-service/internal/cache"
	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
	"github.com/quizbank/admin-service/internal/validator"
)

// taxonomyService manages the four flat named collections. Names are
// canonicalized (trimmed, upper-cased) before any comparison or write, so
// "physics" and " Physics " are the same entity.
type taxonomyService struct {
	repo     repositories.Repository
	cacheMgr *cache.CacheManager
	logger   *slog.Logger
}

func NewTaxonomyService(repo repositories.Repository, cacheMgr *cache.CacheManager, logger *slog.Logger) TaxonomyService {
	return &taxonomyService{repo: repo, cacheMgr: cacheMgr, logger: logger}
}

// CanonicalName trims and upper-cases a taxonomy name.
func CanonicalName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func (s *taxonomyService) Create(ctx context.Context, kind models.TaxonomyKind, name string) (*TaxonomyResponse, error) {
	canonical := CanonicalName(name)
	if canonical == "" {
		return nil, validator.ValidationErrors{{Field: "name", Message: "is required"}}
	}

	if _, err := s.repo.Taxonomy(kind).GetByName(ctx, canonical); err == nil {
		return nil, &DuplicateNameError{Entity: string(kind), Name: canonical}
	} else if err != repositories.ErrNotFound {
		return nil, s.storeErr(kind, err)
	}

	entity := &models.NamedEntity{
		ID:        primitive.NewObjectID(),
		Name:      canonical,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Taxonomy(kind).Create(ctx, entity); err != nil {
		return nil, s.storeErr(kind, err)
	}

	s.invalidate(ctx, kind, entity.ID.Hex())
	return &TaxonomyResponse{NamedEntity: entity}, nil
}

func (s *taxonomyService) GetByID(ctx context.Context, kind models.TaxonomyKind, id string) (*TaxonomyResponse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	cacheKey := fmt.Sprintf("%s:id:%s", kind, id)
	var cached TaxonomyResponse
	if err := s.cacheMgr.Taxonomy.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	entity, err := s.repo.Taxonomy(kind).GetByID(ctx, oid)
	if err != nil {
		return nil, s.storeErr(kind, err)
	}

	resp := &TaxonomyResponse{NamedEntity: entity}
	if err := s.cacheMgr.Taxonomy.Set(ctx, cacheKey, resp, cache.TaxonomyCacheConfig.TTL); err != nil {
		s.logger.Warn("taxonomy cache set failed", "kind", string(kind), "id", id, "error", err)
	}
	return resp, nil
}

func (s *taxonomyService) List(ctx context.Context, kind models.TaxonomyKind) ([]*TaxonomyResponse, error) {
	cacheKey := fmt.Sprintf("%s:list:all", kind)
	var cached []*TaxonomyResponse
	if err := s.cacheMgr.Taxonomy.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	entities, err := s.repo.Taxonomy(kind).List(ctx)
	if err != nil {
		return nil, s.storeErr(kind, err)
	}

	responses := make([]*TaxonomyResponse, 0, len(entities))
	for _, e := range entities {
		responses = append(responses, &TaxonomyResponse{NamedEntity: e})
	}

	if err := s.cacheMgr.Taxonomy.Set(ctx, cacheKey, responses, cache.TaxonomyCacheConfig.TTL); err != nil {
		s.logger.Warn("taxonomy list cache set failed", "kind", string(kind), "error", err)
	}
	return responses, nil
}

func (s *taxonomyService) Rename(ctx context.Context, kind models.TaxonomyKind, id, name string) (*TaxonomyResponse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	canonical := CanonicalName(name)
	if canonical == "" {
		return nil, validator.ValidationErrors{{Field: "name", Message: "is required"}}
	}

	taken, err := s.repo.Taxonomy(kind).ExistsOtherWithName(ctx, canonical, oid)
	if err != nil {
		return nil, s.storeErr(kind, err)
	}
	if taken {
		return nil, &DuplicateNameError{Entity: string(kind), Name: canonical}
	}

	now := time.Now().UTC()
	if err := s.repo.Taxonomy(kind).Rename(ctx, oid, canonical, now); err != nil {
		return nil, s.storeErr(kind, err)
	}

	s.invalidate(ctx, kind, id)

	entity, err := s.repo.Taxonomy(kind).GetByID(ctx, oid)
	if err != nil {
		return nil, s.storeErr(kind, err)
	}
	return &TaxonomyResponse{NamedEntity: entity}, nil
}

func (s *taxonomyService) Delete(ctx context.Context, kind models.TaxonomyKind, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	// Quizzes referencing the entity keep their association field; it simply
	// dangles until the quiz is edited. No cascade.
	if err := s.repo.Taxonomy(kind).Delete(ctx, oid); err != nil {
		return s.storeErr(kind, err)
	}

	s.invalidate(ctx, kind, id)
	return nil
}

func (s *taxonomyService) invalidate(ctx context.Context, kind models.TaxonomyKind, id string) {
	cache.InvalidateTaxonomyCache(ctx, s.cacheMgr, string(kind), id)
}

func (s *taxonomyService) storeErr(kind models.TaxonomyKind, err error) error {
	if err == repositories.ErrNotFound {
		return notFoundFor(kind)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func notFoundFor(kind models.TaxonomyKind) error {
	switch kind {
	case models.KindExam:
		return ErrExamNotFound
	case models.KindChapter:
		return ErrChapterNotFound
	case models.KindClass:
		return ErrClassNotFound
	case models.KindSubject:
		return ErrSubjectNotFound
	}
	return repositories.ErrNotFound
}
