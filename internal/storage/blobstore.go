package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// InlinePrefix marks image payload values that carry embedded content (a data
// URI) instead of an already-hosted reference.
const InlinePrefix = "data:"

// UploadResult is the hosted reference issued for an uploaded object: the
// public URL stored on the document and the storage-side key used for later
// deletion.
type UploadResult struct {
	URL string
	Key string
}

// BlobStore is the object-store abstraction for question/option images.
type BlobStore interface {
	// Upload stores data under dir with the given extension and returns the
	// hosted reference.
	Upload(ctx context.Context, dir, ext, contentType string, data []byte) (*UploadResult, error)
	// DeleteMany removes objects by key, best effort: it returns the keys it
	// failed to delete rather than aborting on the first error.
	DeleteMany(ctx context.Context, keys []string) (failed map[string]error)
}

// IsInline reports whether an image field value is embedded content awaiting
// upload.
func IsInline(ref string) bool {
	return strings.HasPrefix(ref, InlinePrefix)
}

// DecodeInline splits a base64 data URI into its media type and raw bytes.
func DecodeInline(ref string) (contentType string, data []byte, err error) {
	if !IsInline(ref) {
		return "", nil, fmt.Errorf("not an inline content reference")
	}
	rest := strings.TrimPrefix(ref, InlinePrefix)
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, fmt.Errorf("malformed inline content: missing payload")
	}
	contentType = meta
	if i := strings.IndexByte(meta, ';'); i >= 0 {
		contentType = meta[:i]
		if !strings.Contains(meta, "base64") {
			return "", nil, fmt.Errorf("unsupported inline encoding: %s", meta[i+1:])
		}
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode inline content: %w", err)
	}
	return contentType, data, nil
}

// ExtensionFor maps an image media type to a file extension.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	}
	return "bin"
}
