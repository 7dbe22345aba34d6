package services

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/storage"
)

// assetManager owns the image lifecycle around quiz writes: uploading inline
// content before persistence and deleting orphaned objects after it.
type assetManager struct {
	store  storage.BlobStore
	logger *slog.Logger
}

func newAssetManager(store storage.BlobStore, logger *slog.Logger) *assetManager {
	return &assetManager{store: store, logger: logger}
}

// resolveForPersist walks every question and option image field of quiz and
// uploads inline content to a quiz-scoped folder, replacing the field with
// the hosted reference in place. It returns the set of storage keys the
// payload kept unchanged (hosted references carried through from a previous
// version) and the number of uploads performed.
//
// Any upload failure is fatal: a document holding an unresolved inline
// reference must never be persisted, and a half-uploaded quiz is not
// persisted either.
func (m *assetManager) resolveForPersist(ctx context.Context, quiz *models.Quiz) (kept map[string]bool, uploaded int, err error) {
	dir := fmt.Sprintf("quizzes/%s", quiz.ID.Hex())
	kept = make(map[string]bool)

	for i := range quiz.Sections {
		for j := range quiz.Sections[i].Questions {
			question := &quiz.Sections[i].Questions[j]

			n, err := m.resolveImage(ctx, dir, &question.ImageURL, &question.ImageKey, kept)
			if err != nil {
				return nil, uploaded, &AssetUploadError{QuestionText: leadingText(question.Text), Err: err}
			}
			uploaded += n

			for k := range question.Options {
				opt := &question.Options[k]
				n, err := m.resolveImage(ctx, dir, &opt.ImageURL, &opt.ImageKey, kept)
				if err != nil {
					return nil, uploaded, &AssetUploadError{QuestionText: leadingText(question.Text), Err: err}
				}
				uploaded += n
			}
		}
	}
	return kept, uploaded, nil
}

func (m *assetManager) resolveImage(ctx context.Context, dir string, url, key *string, kept map[string]bool) (int, error) {
	switch {
	case *url == "":
		*key = ""
		return 0, nil
	case storage.IsInline(*url):
		contentType, data, err := storage.DecodeInline(*url)
		if err != nil {
			return 0, err
		}
		res, err := m.store.Upload(ctx, dir, storage.ExtensionFor(contentType), contentType, data)
		if err != nil {
			return 0, err
		}
		*url = res.URL
		*key = res.Key
		return 1, nil
	default:
		// Hosted reference kept unchanged by the operator.
		if *key != "" {
			kept[*key] = true
		}
		return 0, nil
	}
}

// backfillKeys restores empty ImageKey fields on quiz from the previous
// document version by matching image URLs. Editors may resend a hosted
// reference as a bare URL; without its key the cleanup diff would treat the
// still-referenced object as orphaned and delete it.
func backfillKeys(quiz *models.Quiz, old *models.RawQuiz) {
	byURL := make(map[string]string)
	collect := func(questions []models.RawQuestion) {
		for _, q := range questions {
			if q.ImageURL != "" && q.ImageKey != "" {
				byURL[q.ImageURL] = q.ImageKey
			}
			for _, o := range q.Options {
				if o.ImageURL != "" && o.ImageKey != "" {
					byURL[o.ImageURL] = o.ImageKey
				}
			}
		}
	}
	for _, s := range old.Sections {
		collect(s.Questions)
	}
	collect(old.Questions)

	for i := range quiz.Sections {
		for j := range quiz.Sections[i].Questions {
			question := &quiz.Sections[i].Questions[j]
			if question.ImageKey == "" && question.ImageURL != "" {
				question.ImageKey = byURL[question.ImageURL]
			}
			for k := range question.Options {
				opt := &question.Options[k]
				if opt.ImageKey == "" && opt.ImageURL != "" {
					opt.ImageKey = byURL[opt.ImageURL]
				}
			}
		}
	}
}

// diffForCleanup returns the storage keys referenced by the previous document
// version that the new version no longer keeps: replaced images and images of
// removed questions/options. Keys freshly uploaded for the new version are
// never in the result.
func diffForCleanup(oldKeys []string, kept map[string]bool) []string {
	var orphaned []string
	for _, key := range oldKeys {
		if !kept[key] {
			orphaned = append(orphaned, key)
		}
	}
	return orphaned
}

// freshKeys returns the keys uploaded for this version of quiz: everything it
// references that was not carried through from the previous version. Used to
// roll back uploads when the document write itself fails.
func freshKeys(quiz *models.Quiz, kept map[string]bool) []string {
	return diffForCleanup(quiz.StorageKeys(), kept)
}

// deleteAssets removes orphaned objects, best effort. Failures are logged and
// swallowed: a stray object is recoverable by an out-of-band sweep, a stuck
// quiz edit is not.
func (m *assetManager) deleteAssets(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	failed := m.store.DeleteMany(ctx, keys)
	for key, err := range failed {
		m.logger.Error("orphaned asset cleanup failed", "key", key, "error", err)
	}
	if deleted := len(keys) - len(failed); deleted > 0 {
		m.logger.Info("deleted orphaned assets", "count", deleted)
	}
}

// leadingText returns the first few words of a question for diagnostics.
func leadingText(text string) string {
	const max = 60
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "…"
}
