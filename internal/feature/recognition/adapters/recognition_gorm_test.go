package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogadapters "banknote_backend/internal/feature/catalog/adapters"
	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(
		&catalogadapters.ImageModel{},
		&catalogadapters.BanknoteMetadataModel{},
		&RecognitionResultModel{},
		&RecognizedSymbolModel{},
		&RecognitionJobModel{},
	)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

// seedImageWithMetadata creates an image row plus its metadata for the stats join.
func seedImageWithMetadata(t *testing.T, db *gorm.DB, hash, country, denomination string) uint {
	t.Helper()

	img := catalogadapters.ImageModel{
		OriginalName: hash + ".jpg",
		HashName:     hash + ".jpg",
		FilePath:     "uploads/" + hash + ".jpg",
		FileHash:     hash,
	}
	require.NoError(t, db.Create(&img).Error, "failed to seed image")

	meta := catalogadapters.BanknoteMetadataModel{
		ImageID:      img.ID,
		Country:      country,
		Denomination: denomination,
		SerialNumber: hash,
	}
	require.NoError(t, db.Create(&meta).Error, "failed to seed metadata")

	return img.ID
}

func testResult(imageID uint, confidence float64, symbols ...entity.RecognizedSymbol) entity.RecognitionResult {
	return entity.RecognitionResult{
		ImageID:          imageID,
		RegionID:         1,
		ModelVersion:     "best.pt",
		AlphabetChecksum: "abc123def456",
		SerialNumber:     "АБ1234567",
		Confidence:       confidence,
		ProcessingTime:   120 * time.Millisecond,
		Symbols:          symbols,
	}
}

func TestRecognitionGorm_AddRecognition(t *testing.T) {
	t.Parallel()

	t.Run("success: persists the result together with its symbols", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewRecognitionRepository(db)

		result := testResult(1, 0.8,
			entity.RecognizedSymbol{Symbol: "А", Confidence: 0.9, X: 0.1, Y: 0.5, Width: 0.08, Height: 0.12},
			entity.RecognizedSymbol{Symbol: "Б", Confidence: 0.7, X: 0.2, Y: 0.5, Width: 0.08, Height: 0.12},
		)

		stored, err := repo.AddRecognition(context.Background(), result)
		require.NoError(t, err)

		assert.NotZero(t, stored.ID)
		assert.Equal(t, "best.pt", stored.ModelVersion)
		assert.Equal(t, 120*time.Millisecond, stored.ProcessingTime)
		require.Len(t, stored.Symbols, 2)
		for _, s := range stored.Symbols {
			assert.NotZero(t, s.ID)
			assert.Equal(t, stored.ID, s.RecognitionID)
		}

		var symbolCount int64
		require.NoError(t, db.Model(&RecognizedSymbolModel{}).Count(&symbolCount).Error)
		assert.Equal(t, int64(2), symbolCount)
	})

	t.Run("success: a fallback result without symbols stores no symbol rows", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewRecognitionRepository(db)

		stored, err := repo.AddRecognition(context.Background(), testResult(1, 0))
		require.NoError(t, err)

		assert.NotZero(t, stored.ID)
		assert.Empty(t, stored.Symbols)

		var symbolCount int64
		require.NoError(t, db.Model(&RecognizedSymbolModel{}).Count(&symbolCount).Error)
		assert.Zero(t, symbolCount)
	})
}

func TestRecognitionGorm_Stats(t *testing.T) {
	t.Parallel()

	t.Run("success: empty database yields zero stats", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewRecognitionRepository(db)

		stats, err := repo.Stats(context.Background())
		require.NoError(t, err)

		assert.Zero(t, stats.TotalRecognitions)
		assert.Zero(t, stats.UniqueImages)
		assert.Zero(t, stats.AverageConfidence)
		assert.Empty(t, stats.CountryCounts)
		assert.Empty(t, stats.DenominationCounts)
	})

	t.Run("success: aggregates counts, average and metadata distributions", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewRecognitionRepository(db)

		usaID := seedImageWithMetadata(t, db, "hash-usa", "USA", "100")
		rusID := seedImageWithMetadata(t, db, "hash-rus", "RUSSIA", "5000")

		_, err := repo.AddRecognition(context.Background(), testResult(usaID, 0.9))
		require.NoError(t, err)
		_, err = repo.AddRecognition(context.Background(), testResult(usaID, 0.7))
		require.NoError(t, err)
		_, err = repo.AddRecognition(context.Background(), testResult(rusID, 0.5))
		require.NoError(t, err)

		stats, err := repo.Stats(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int64(3), stats.TotalRecognitions)
		assert.Equal(t, int64(2), stats.UniqueImages)
		assert.InDelta(t, 0.7, stats.AverageConfidence, 1e-9)
		assert.Equal(t, int64(2), stats.CountryCounts["USA"])
		assert.Equal(t, int64(1), stats.CountryCounts["RUSSIA"])
		assert.Equal(t, int64(2), stats.DenominationCounts["100"])
		assert.Equal(t, int64(1), stats.DenominationCounts["5000"])
	})

	t.Run("success: images without metadata country are excluded from the distribution", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewRecognitionRepository(db)

		id := seedImageWithMetadata(t, db, "hash-unknown", "", "")
		_, err := repo.AddRecognition(context.Background(), testResult(id, 0.8))
		require.NoError(t, err)

		stats, err := repo.Stats(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int64(1), stats.TotalRecognitions)
		assert.Empty(t, stats.CountryCounts)
		assert.Empty(t, stats.DenominationCounts)
	})
}

func TestJobGorm(t *testing.T) {
	t.Parallel()

	t.Run("success: create, update and find a job", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewJobRepository(db)
		ctx := context.Background()

		job := entity.RecognitionJob{
			ID:          "0f3c2a1e-0000-4000-8000-000000000001",
			Status:      entity.JobStatusPending,
			TotalImages: 3,
		}
		require.NoError(t, repo.CreateJob(ctx, job))

		created, err := repo.FindJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusPending, created.Status)
		assert.False(t, created.CreatedAt.IsZero())

		started := time.Now()
		created.Status = entity.JobStatusRunning
		created.StartedAt = &started
		created.ProcessedImages = 2
		created.SkippedImages = 1
		require.NoError(t, repo.UpdateJob(ctx, created))

		updated, err := repo.FindJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusRunning, updated.Status)
		assert.Equal(t, 2, updated.ProcessedImages)
		assert.Equal(t, 1, updated.SkippedImages)
		assert.Equal(t, 3, updated.TotalImages)
		require.NotNil(t, updated.StartedAt)
		// 進行状況の更新で作成時刻は変わらない
		assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
	})

	t.Run("failure: unknown job id returns ErrJobNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewJobRepository(db)

		_, err := repo.FindJob(context.Background(), "missing")
		assert.ErrorIs(t, err, usecase.ErrJobNotFound)
	})
}
