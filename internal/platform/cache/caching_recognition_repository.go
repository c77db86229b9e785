// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/usecase"
)

// CachingRecognitionRepository decorates a RecognitionRepository with Redis caching.
// Stats runs several COUNT/AVG/GROUP BY queries per call, so the assembled payload
// is cached and invalidated whenever a new recognition result is stored.
type CachingRecognitionRepository struct {
	inner     usecase.RecognitionRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.RecognitionRepository = (*CachingRecognitionRepository)(nil)

// NewCachingRecognitionRepository decorates a RecognitionRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "recognition".
func NewCachingRecognitionRepository(rdb *redis.Client, ttl time.Duration, inner usecase.RecognitionRepository, namespace string) *CachingRecognitionRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "recognition"
	}
	return &CachingRecognitionRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// AddRecognition stores the result and invalidates cached stats.
func (c *CachingRecognitionRepository) AddRecognition(ctx context.Context, result entity.RecognitionResult) (entity.RecognitionResult, error) {
	// First persist to the underlying repository
	stored, err := c.inner.AddRecognition(ctx, result)
	if err != nil {
		return entity.RecognitionResult{}, err
	}
	// Exit early if Redis is not configured
	if c.rdb == nil {
		return stored, nil
	}

	_ = c.deleteByPattern(ctx, c.namespace+":*") // Best effort: don't fail if cache deletion fails
	return stored, nil
}

// Stats retrieves recognition statistics, checking cache first then falling back to the database.
func (c *CachingRecognitionRepository) Stats(ctx context.Context) (entity.RecognitionStats, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Stats(ctx)
	}

	key := c.statsKey()

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.RecognitionStats
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Stats(ctx)
	if err != nil {
		return entity.RecognitionStats{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// statsKey generates the cache key for the aggregated stats payload.
func (c *CachingRecognitionRepository) statsKey() string {
	return c.namespace + ":stats"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingRecognitionRepository) deleteByPattern(ctx context.Context, pattern string) error {
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
