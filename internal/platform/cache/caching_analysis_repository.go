// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"screenshot_backend/internal/feature/screenshot/domain/entity"
	"screenshot_backend/internal/feature/screenshot/usecase"
)

// CachingAnalysisRepository decorates an AnalysisRepository with Redis caching.
// Lookups by image URI and tag searches are cached; misses and errors are not.
type CachingAnalysisRepository struct {
	inner     usecase.AnalysisRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.AnalysisRepository = (*CachingAnalysisRepository)(nil)

// NewCachingAnalysisRepository decorates an AnalysisRepository with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "analysis".
func NewCachingAnalysisRepository(rdb *redis.Client, ttl time.Duration, inner usecase.AnalysisRepository, namespace string) *CachingAnalysisRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "analysis"
	}
	return &CachingAnalysisRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the analysis and invalidates the cache entries it can affect.
func (c *CachingAnalysisRepository) Create(ctx context.Context, a *entity.Analysis) error {
	if err := c.inner.Create(ctx, a); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	// Best effort: a stale entry expires with the TTL
	if err := c.rdb.Del(ctx, c.uriKey(a.ImageURI)).Err(); err != nil {
		slog.Warn("analysis cache invalidation failed", "error", err)
	}
	if err := c.deleteByPattern(ctx, c.tagKeyPrefix()+"*"); err != nil {
		slog.Warn("analysis tag cache invalidation failed", "error", err)
	}
	return nil
}

// FindByImageURI checks the cache first, then falls back to the inner repository.
func (c *CachingAnalysisRepository) FindByImageURI(ctx context.Context, imageURI string) (*entity.Analysis, error) {
	if c.rdb == nil {
		return c.inner.FindByImageURI(ctx, imageURI)
	}

	key := c.uriKey(imageURI)
	var cached entity.Analysis
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	out, err := c.inner.FindByImageURI(ctx, imageURI)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// SearchByTag checks the cache first, then falls back to the inner repository.
func (c *CachingAnalysisRepository) SearchByTag(ctx context.Context, tag string) ([]entity.Analysis, error) {
	if c.rdb == nil {
		return c.inner.SearchByTag(ctx, tag)
	}

	key := c.tagKeyPrefix() + digest(strings.ToLower(tag))
	var cached []entity.Analysis
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.SearchByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// get reports whether key held a decodable value. Corrupted entries are deleted.
func (c *CachingAnalysisRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("analysis cache read failed", "key", key, "error", err)
		}
		return false
	}
	if len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *CachingAnalysisRepository) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func (c *CachingAnalysisRepository) uriKey(imageURI string) string {
	return fmt.Sprintf("%s:uri:%s", c.namespace, digest(imageURI))
}

func (c *CachingAnalysisRepository) tagKeyPrefix() string {
	return c.namespace + ":tag:"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingAnalysisRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// digest turns arbitrary user input into a fixed-length key part.
// URIs and tags may contain ':' '*' or spaces, so they are hashed rather than escaped.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
