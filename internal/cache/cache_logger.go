package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateQuizCache drops the cached document, every listing page and the
// dashboard aggregates after a quiz write
func InvalidateQuizCache(ctx context.Context, cm *CacheManager, quizID string) {
	SafeDelete(ctx, cm.Quiz, fmt.Sprintf("id:%s", quizID))
	SafeInvalidatePattern(ctx, cm.List, "*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateTaxonomyCache invalidates taxonomy caches after create, rename or delete
func InvalidateTaxonomyCache(ctx context.Context, cm *CacheManager, kind string, entityID string) {
	SafeDelete(ctx, cm.Taxonomy, fmt.Sprintf("%s:id:%s", kind, entityID))
	SafeInvalidatePattern(ctx, cm.Taxonomy, fmt.Sprintf("%s:list:*", kind))
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
