package di

import (
	"time"

	"banknote_backend/internal/feature/recognition/adapters"
	"banknote_backend/internal/feature/recognition/usecase"
	"banknote_backend/internal/platform/cache"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// statsTTL bounds how long aggregated recognition stats may be served from cache.
const statsTTL = 5 * time.Minute

// NewRecognitionRepository creates a RecognitionRepository implementation.
// If Redis is available, the GORM repository is wrapped with a stats cache
// that is invalidated on every new recognition. Otherwise, the GORM
// repository is used directly.
func NewRecognitionRepository(rdb *redis.Client, db *gorm.DB) usecase.RecognitionRepository {
	inner := adapters.NewRecognitionRepository(db)
	if rdb != nil {
		return cache.NewCachingRecognitionRepository(rdb, statsTTL, inner, "recognition")
	}
	return inner
}
