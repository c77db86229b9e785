package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/usecase"
)

type jobGorm struct {
	db *gorm.DB
}

var _ usecase.JobRepository = (*jobGorm)(nil)

func NewJobRepository(db *gorm.DB) *jobGorm {
	return &jobGorm{db: db}
}

// RecognitionJobModel はバッチ認識ジョブの永続化モデルです。
type RecognitionJobModel struct {
	ID              string `gorm:"primaryKey;size:36"`
	Status          string `gorm:"size:16;not null;index"`
	TotalImages     int    `gorm:"not null;default:0"`
	ProcessedImages int    `gorm:"not null;default:0"`
	SkippedImages   int    `gorm:"not null;default:0"`
	ErrorMessage    string `gorm:"size:255"`
	CreatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

func (RecognitionJobModel) TableName() string {
	return "recognition_jobs"
}

func toJobModel(e entity.RecognitionJob) RecognitionJobModel {
	return RecognitionJobModel{
		ID:              e.ID,
		Status:          string(e.Status),
		TotalImages:     e.TotalImages,
		ProcessedImages: e.ProcessedImages,
		SkippedImages:   e.SkippedImages,
		ErrorMessage:    e.ErrorMessage,
		StartedAt:       e.StartedAt,
		FinishedAt:      e.FinishedAt,
	}
}

func toJobEntity(m RecognitionJobModel) entity.RecognitionJob {
	return entity.RecognitionJob{
		ID:              m.ID,
		Status:          entity.JobStatus(m.Status),
		TotalImages:     m.TotalImages,
		ProcessedImages: m.ProcessedImages,
		SkippedImages:   m.SkippedImages,
		ErrorMessage:    m.ErrorMessage,
		CreatedAt:       m.CreatedAt,
		StartedAt:       m.StartedAt,
		FinishedAt:      m.FinishedAt,
	}
}

func (r *jobGorm) CreateJob(ctx context.Context, job entity.RecognitionJob) error {
	m := toJobModel(job)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *jobGorm) UpdateJob(ctx context.Context, job entity.RecognitionJob) error {
	// 作成時刻と総数は登録後に変わらないため書き戻さない
	return r.db.WithContext(ctx).
		Model(&RecognitionJobModel{ID: job.ID}).
		Updates(map[string]any{
			"status":           string(job.Status),
			"processed_images": job.ProcessedImages,
			"skipped_images":   job.SkippedImages,
			"error_message":    job.ErrorMessage,
			"started_at":       job.StartedAt,
			"finished_at":      job.FinishedAt,
		}).Error
}

func (r *jobGorm) FindJob(ctx context.Context, id string) (entity.RecognitionJob, error) {
	var m RecognitionJobModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.RecognitionJob{}, usecase.ErrJobNotFound
		}
		return entity.RecognitionJob{}, err
	}
	return toJobEntity(m), nil
}
