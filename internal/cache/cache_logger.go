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

// InvalidatePaperCache invalidates all paper-related caches
func InvalidatePaperCache(ctx context.Context, cm *CacheManager, paperID string) {
	SafeDelete(ctx, cm.Paper,
		fmt.Sprintf("id:%s", paperID),
		fmt.Sprintf("details:%s", paperID))
	SafeInvalidatePattern(ctx, cm.Paper, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}

// InvalidateUserCache invalidates all user-related caches
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID, email string) {
	SafeDelete(ctx, cm.User,
		fmt.Sprintf("id:%s", userID),
		fmt.Sprintf("email:%s", email))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
	SafeInvalidatePattern(ctx, cm.User, "roster:*")
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}

// InvalidateNewsCache invalidates the news feed caches
func InvalidateNewsCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.News, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}
