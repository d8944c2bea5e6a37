package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	screenshotadapters "screenshot_backend/internal/feature/screenshot/adapters"
	"screenshot_backend/internal/feature/screenshot/usecase"
	"screenshot_backend/internal/platform/cache"
	"screenshot_backend/internal/platform/storage"
)

// NewAnalysisRepository creates an AnalysisRepository implementation.
// If Redis is available, lookups go through a Redis cache. Otherwise, it reads the database directly.
func NewAnalysisRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.AnalysisRepository {
	repo := screenshotadapters.NewAnalysisGorm(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingAnalysisRepository(rdb, ttl, repo, "analysis")
}

// NewArchiver creates the screenshot archiver.
// It returns nil when MinIO is not configured or unreachable; captioning keeps working without it.
func NewArchiver(ctx context.Context, cfg storage.Config) usecase.Archiver {
	if cfg.Endpoint == "" {
		return nil
	}
	store, err := storage.NewMinioStore(ctx, cfg)
	if err != nil {
		slog.Warn("MinIO unavailable. Screenshots are not archived.", "endpoint", cfg.Endpoint, "error", err)
		return nil
	}
	slog.Info("MinIO archive enabled", "bucket", store.Bucket())
	return store
}
