package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for absent documents.
var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrExamNotFound    = errors.New("exam not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrSubjectNotFound = errors.New("subject not found")

	ErrInvalidID = errors.New("invalid document id")

	// ErrStoreUnavailable wraps document-store connectivity failures.
	ErrStoreUnavailable = errors.New("backend store unavailable")
)

// DuplicateNameError reports a name collision on a uniquely-named taxonomy
// entity.
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a %s named %q already exists", e.Entity, e.Name)
}

// AssetUploadError aborts a quiz write when an inline image cannot be
// uploaded. QuestionText carries the leading text of the offending question
// so the operator can locate it.
type AssetUploadError struct {
	QuestionText string
	Err          error
}

func (e *AssetUploadError) Error() string {
	return fmt.Sprintf("image upload failed for question %q: %v", e.QuestionText, e.Err)
}

func (e *AssetUploadError) Unwrap() error { return e.Err }
