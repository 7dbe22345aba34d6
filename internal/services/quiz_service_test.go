package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/quizbank/admin-service/internal/cache"
	"github.com/quizbank/admin-service/internal/events"
	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
	"github.com/quizbank/admin-service/internal/storage"
	"github.com/quizbank/admin-service/internal/validator"
)

type quizServiceFixture struct {
	repo      *memRepository
	store     *storage.MockStore
	publisher *events.MockEventPublisher
	service   QuizService
}

func newQuizServiceFixture() *quizServiceFixture {
	repo := newMemRepository()
	store := storage.NewMockStore()
	publisher := events.NewMockEventPublisher(nil)
	service := NewQuizService(repo, store, publisher, cache.NewCacheManager(nil), NewInlineRunner(), testLogger())
	return &quizServiceFixture{repo: repo, store: store, publisher: publisher, service: service}
}

func createPayload() *QuizPayload {
	return &QuizPayload{
		Title:    "Mechanics Mock 1",
		TestType: string(models.TestTypeMock),
		Sections: []models.RawSection{{
			Name: "Section A",
			Questions: []models.RawQuestion{{
				Text: "First question",
				Options: []models.RawOption{
					{Text: "Right", IsCorrect: true},
					{Text: "Wrong"},
				},
			}},
		}},
	}
}

func TestQuizService_Create(t *testing.T) {
	f := newQuizServiceFixture()
	ctx := context.Background()

	t.Run("creates in Draft regardless of payload status", func(t *testing.T) {
		payload := createPayload()
		payload.Status = string(models.StatusPublished)

		result, err := f.service.Create(ctx, payload)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if result.Quiz.Status != models.StatusDraft {
			t.Errorf("expected Draft, got %s", result.Quiz.Status)
		}
		if result.Quiz.ID.IsZero() {
			t.Error("quiz id not assigned")
		}
		if result.Quiz.CreatedAt.IsZero() || !result.Quiz.CreatedAt.Equal(result.Quiz.UpdatedAt) {
			t.Error("createdAt/updatedAt not initialized together")
		}
	})

	t.Run("uploads inline images and counts them", func(t *testing.T) {
		payload := createPayload()
		payload.Sections[0].Questions[0].ImageURL = inlineImage

		result, err := f.service.Create(ctx, payload)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if result.UploadedImages != 1 {
			t.Errorf("expected 1 uploaded image, got %d", result.UploadedImages)
		}
		key := result.Quiz.Sections[0].Questions[0].ImageKey
		if key == "" || !f.store.Stored(key) {
			t.Errorf("uploaded image not stored, key=%q", key)
		}
	})

	t.Run("publishes quiz.created", func(t *testing.T) {
		f := newQuizServiceFixture()
		if _, err := f.service.Create(ctx, createPayload()); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		published := f.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.QuizCreated {
			t.Errorf("expected one quiz.created event, got %v", published)
		}
	})

	t.Run("adds backlinks", func(t *testing.T) {
		f := newQuizServiceFixture()
		examID := f.repo.seedTaxonomy(models.KindExam, "JEE")

		payload := createPayload()
		payload.ExamID = examID

		result, err := f.service.Create(ctx, payload)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got := f.repo.taxonomyByID(models.KindExam, examID).QuizIDs
		if len(got) != 1 || got[0] != result.Quiz.ID.Hex() {
			t.Errorf("exam quizIds = %v", got)
		}
	})

	t.Run("rejects invalid payload without persisting", func(t *testing.T) {
		f := newQuizServiceFixture()
		payload := createPayload()
		payload.Title = ""

		_, err := f.service.Create(ctx, payload)
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
		if n, _ := f.repo.quiz.Count(ctx, repositories.QuizFilters{}); n != 0 {
			t.Errorf("invalid quiz was persisted, count=%d", n)
		}
	})

	t.Run("upload failure persists nothing", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.store.FailUploadAfter = 0

		payload := createPayload()
		payload.Sections[0].Questions[0].ImageURL = inlineImage

		_, err := f.service.Create(ctx, payload)
		var uploadErr *AssetUploadError
		if !errors.As(err, &uploadErr) {
			t.Fatalf("expected AssetUploadError, got %v", err)
		}
		if n, _ := f.repo.quiz.Count(ctx, repositories.QuizFilters{}); n != 0 {
			t.Errorf("quiz persisted despite upload failure, count=%d", n)
		}
	})

	t.Run("persist failure rolls back fresh uploads", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.repo.quiz.createErr = fmt.Errorf("write concern failed")

		payload := createPayload()
		payload.Sections[0].Questions[0].ImageURL = inlineImage

		_, err := f.service.Create(ctx, payload)
		if !errors.Is(err, ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
		if deleted := f.store.Deleted(); len(deleted) != 1 {
			t.Errorf("expected fresh upload rolled back, deleted=%v", deleted)
		}
	})
}

func TestQuizService_Update(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *quizServiceFixture, mutate func(p *QuizPayload)) string {
		t.Helper()
		payload := createPayload()
		if mutate != nil {
			mutate(payload)
		}
		result, err := f.service.Create(ctx, payload)
		if err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
		f.publisher.ClearEvents()
		return result.Quiz.ID.Hex()
	}

	t.Run("replaces document wholesale", func(t *testing.T) {
		f := newQuizServiceFixture()
		id := seed(t, f, nil)

		payload := createPayload()
		payload.Title = "Renamed Quiz"

		resp, err := f.service.Update(ctx, id, payload)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if resp.Title != "Renamed Quiz" {
			t.Errorf("title not replaced: %q", resp.Title)
		}
		if resp.Quiz.ID.Hex() != id {
			t.Errorf("id changed on update")
		}

		published := f.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.QuizUpdated {
			t.Errorf("expected one quiz.updated event, got %v", published)
		}
	})

	t.Run("cleans up orphaned images, keeps carried ones", func(t *testing.T) {
		f := newQuizServiceFixture()
		id := seed(t, f, func(p *QuizPayload) {
			// Version 1 has two images: one on the question, one on an option.
			p.Sections[0].Questions[0].ImageURL = inlineImage
			p.Sections[0].Questions[0].Options[0].ImageURL = inlineImage
		})

		stored := f.repo.quiz.docs[id]
		keptKey := stored.Sections[0].Questions[0].ImageKey
		keptURL := stored.Sections[0].Questions[0].ImageURL
		droppedKey := stored.Sections[0].Questions[0].Options[0].ImageKey

		// Version 2 keeps the question image, drops the option image and adds
		// a fresh inline one on the second option.
		payload := createPayload()
		payload.Sections[0].Questions[0].ImageURL = keptURL
		payload.Sections[0].Questions[0].ImageKey = keptKey
		payload.Sections[0].Questions[0].Options[1].ImageURL = inlineImage

		if _, err := f.service.Update(ctx, id, payload); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if !f.store.Stored(keptKey) {
			t.Error("carried image was deleted")
		}
		if f.store.Stored(droppedKey) {
			t.Error("orphaned image was not deleted")
		}
	})

	t.Run("bare hosted url keeps its image", func(t *testing.T) {
		f := newQuizServiceFixture()
		id := seed(t, f, func(p *QuizPayload) {
			p.Sections[0].Questions[0].ImageURL = inlineImage
		})

		stored := f.repo.quiz.docs[id]
		keptKey := stored.Sections[0].Questions[0].ImageKey
		keptURL := stored.Sections[0].Questions[0].ImageURL

		// The edit resends the hosted URL without the storage key, the way a
		// client that only round-trips the url field does.
		payload := createPayload()
		payload.Sections[0].Questions[0].ImageURL = keptURL

		if _, err := f.service.Update(ctx, id, payload); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if !f.store.Stored(keptKey) {
			t.Error("still-referenced image was deleted")
		}
		after := f.repo.quiz.docs[id].Sections[0].Questions[0]
		if after.ImageKey != keptKey {
			t.Errorf("stored key = %q, want %q", after.ImageKey, keptKey)
		}
		if after.ImageURL != keptURL {
			t.Errorf("stored url = %q, want %q", after.ImageURL, keptURL)
		}
	})

	t.Run("status-only payload flips status without touching content", func(t *testing.T) {
		f := newQuizServiceFixture()
		id := seed(t, f, nil)
		before := f.repo.quiz.docs[id].Sections

		resp, err := f.service.Update(ctx, id, &QuizPayload{Status: string(models.StatusPublished)})
		if err != nil {
			t.Fatalf("status update failed: %v", err)
		}
		if resp.Status != models.StatusPublished {
			t.Errorf("status not updated: %s", resp.Status)
		}

		after := f.repo.quiz.docs[id]
		if after.Status != string(models.StatusPublished) {
			t.Errorf("stored status = %q", after.Status)
		}
		if len(after.Sections) != len(before) {
			t.Error("status-only update modified sections")
		}

		published := f.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.QuizStatusChanged {
			t.Errorf("expected quiz.status_changed, got %v", published)
		}
	})

	t.Run("status-only rejects unknown status", func(t *testing.T) {
		f := newQuizServiceFixture()
		id := seed(t, f, nil)

		_, err := f.service.Update(ctx, id, &QuizPayload{Status: "Archived"})
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
	})

	t.Run("moves backlinks on reassociation", func(t *testing.T) {
		f := newQuizServiceFixture()
		oldExam := f.repo.seedTaxonomy(models.KindExam, "OLD")
		newExam := f.repo.seedTaxonomy(models.KindExam, "NEW")
		id := seed(t, f, func(p *QuizPayload) { p.ExamID = oldExam })

		payload := createPayload()
		payload.ExamID = newExam
		if _, err := f.service.Update(ctx, id, payload); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if got := f.repo.taxonomyByID(models.KindExam, oldExam).QuizIDs; len(got) != 0 {
			t.Errorf("old exam still references quiz: %v", got)
		}
		if got := f.repo.taxonomyByID(models.KindExam, newExam).QuizIDs; len(got) != 1 {
			t.Errorf("new exam missing reference: %v", got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newQuizServiceFixture()
		_, err := f.service.Update(ctx, "64b000000000000000000000", createPayload())
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newQuizServiceFixture()
		_, err := f.service.Update(ctx, "nope", createPayload())
		if !errors.Is(err, ErrInvalidID) {
			t.Errorf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestQuizService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newQuizServiceFixture()
	examID := f.repo.seedTaxonomy(models.KindExam, "CET")

	payload := createPayload()
	payload.ExamID = examID
	payload.Sections[0].Questions[0].ImageURL = inlineImage
	result, err := f.service.Create(ctx, payload)
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}
	id := result.Quiz.ID.Hex()
	imageKey := result.Quiz.Sections[0].Questions[0].ImageKey
	f.publisher.ClearEvents()

	if err := f.service.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if n, _ := f.repo.quiz.Count(ctx, repositories.QuizFilters{}); n != 0 {
		t.Errorf("document not deleted, count=%d", n)
	}
	if f.store.Stored(imageKey) {
		t.Error("quiz image not deleted")
	}
	if got := f.repo.taxonomyByID(models.KindExam, examID).QuizIDs; len(got) != 0 {
		t.Errorf("exam still references deleted quiz: %v", got)
	}
	published := f.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.QuizDeleted {
		t.Errorf("expected quiz.deleted event, got %v", published)
	}

	if err := f.service.Delete(ctx, id); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("second delete: expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newQuizServiceFixture()

	result, err := f.service.Create(ctx, createPayload())
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	resp, err := f.service.GetByID(ctx, result.Quiz.ID.Hex())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if resp.Title != "Mechanics Mock 1" {
		t.Errorf("unexpected title %q", resp.Title)
	}
	if resp.QuestionCount != 1 {
		t.Errorf("expected question count 1, got %d", resp.QuestionCount)
	}

	t.Run("legacy document is adapted on read", func(t *testing.T) {
		legacy := &models.RawQuiz{
			ID:       result.Quiz.ID,
			Title:    "Legacy",
			TestType: string(models.TestTypeMock),
			Status:   string(models.StatusDraft),
			Questions: []models.RawQuestion{{
				Text:    "Flat question",
				Options: []models.RawOption{{Text: "A", IsCorrect: true}},
			}},
		}
		f.repo.quiz.docs[result.Quiz.ID.Hex()] = legacy

		resp, err := f.service.GetByID(ctx, result.Quiz.ID.Hex())
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if len(resp.Sections) != 1 || resp.Sections[0].Name != LegacySectionName {
			t.Errorf("legacy document not adapted: %+v", resp.Sections)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.service.GetByID(ctx, "64b000000000000000000000")
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})
}

func TestQuizService_List(t *testing.T) {
	ctx := context.Background()
	f := newQuizServiceFixture()

	for i := 0; i < 3; i++ {
		if _, err := f.service.Create(ctx, createPayload()); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}
	// Publish one of them.
	var anyID string
	for id := range f.repo.quiz.docs {
		anyID = id
		break
	}
	if _, err := f.service.Update(ctx, anyID, &QuizPayload{Status: string(models.StatusPublished)}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	t.Run("unfiltered", func(t *testing.T) {
		list, err := f.service.List(ctx, repositories.QuizFilters{Limit: 10})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if list.Total != 3 || len(list.Quizzes) != 3 {
			t.Errorf("total=%d len=%d, want 3/3", list.Total, len(list.Quizzes))
		}
	})

	t.Run("filtered by status", func(t *testing.T) {
		status := models.StatusPublished
		list, err := f.service.List(ctx, repositories.QuizFilters{Status: &status, Limit: 10})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if list.Total != 1 {
			t.Errorf("expected 1 published quiz, got %d", list.Total)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		list, err := f.service.List(ctx, repositories.QuizFilters{Limit: 2, Offset: 2})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if list.Total != 3 || len(list.Quizzes) != 1 {
			t.Errorf("total=%d len=%d, want 3/1", list.Total, len(list.Quizzes))
		}
		if list.Page != 2 || list.Size != 2 {
			t.Errorf("page=%d size=%d, want 2/2", list.Page, list.Size)
		}
	})
}
