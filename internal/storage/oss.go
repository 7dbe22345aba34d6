package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OSSConfig configures the Aliyun OSS backed blob store.
type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// PublicBaseURL is the URL prefix public object URLs are built from,
	// e.g. a CDN domain. Defaults to the bucket's virtual-host endpoint.
	PublicBaseURL string
}

type ossStore struct {
	bucket  *oss.Bucket
	baseURL string
}

// NewOSSStore connects to the configured bucket.
func NewOSSStore(cfg OSSConfig) (BlobStore, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %q: %w", cfg.Bucket, err)
	}

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
		baseURL = fmt.Sprintf("https://%s.%s", cfg.Bucket, endpoint)
	}

	return &ossStore{bucket: bucket, baseURL: baseURL}, nil
}

func (s *ossStore) Upload(ctx context.Context, dir, ext, contentType string, data []byte) (*UploadResult, error) {
	key := fmt.Sprintf("%s/%s.%s", strings.Trim(dir, "/"), primitive.NewObjectID().Hex(), ext)

	err := s.bucket.PutObject(key, bytes.NewReader(data),
		oss.ContentType(contentType),
		oss.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("oss put %s: %w", key, err)
	}
	return &UploadResult{
		URL: s.baseURL + "/" + key,
		Key: key,
	}, nil
}

func (s *ossStore) DeleteMany(ctx context.Context, keys []string) map[string]error {
	failed := make(map[string]error)
	if len(keys) == 0 {
		return failed
	}

	res, err := s.bucket.DeleteObjects(keys, oss.WithContext(ctx))
	if err != nil {
		for _, key := range keys {
			failed[key] = err
		}
		return failed
	}

	deleted := make(map[string]bool, len(res.DeletedObjects))
	for _, key := range res.DeletedObjects {
		deleted[key] = true
	}
	for _, key := range keys {
		if !deleted[key] {
			failed[key] = fmt.Errorf("object %s not reported deleted", key)
		}
	}
	return failed
}

// Disabled is the store used when no object storage is configured: uploads
// fail loudly, deletes are no-ops.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, string, []byte) (*UploadResult, error) {
	return nil, fmt.Errorf("object storage is not configured")
}

func (Disabled) DeleteMany(context.Context, []string) map[string]error { return nil }
