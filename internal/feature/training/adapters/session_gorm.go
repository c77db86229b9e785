package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"banknote_backend/internal/feature/training/domain/entity"
	"banknote_backend/internal/feature/training/usecase"
)

type sessionGorm struct {
	db *gorm.DB
}

var _ usecase.SessionRepository = (*sessionGorm)(nil)

func NewSessionRepository(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db}
}

// TrainingSessionModel は学習セッション履歴の永続化モデルです。
// レコードは外部の学習パイプラインが書き込み、このサービスは読み取り専用です。
type TrainingSessionModel struct {
	ID                  uint      `gorm:"primaryKey"`
	ModelName           string    `gorm:"size:255;not null"`
	StartTime           time.Time `gorm:"not null"`
	EndTime             *time.Time
	Epochs              int     `gorm:"not null"`
	BatchSize           int     `gorm:"not null"`
	LearningRate        float64 `gorm:"not null"`
	TrainImages         int     `gorm:"not null"`
	ValImages           int     `gorm:"not null"`
	BestAccuracy        *float64
	BestPrecision       *float64
	BestRecall          *float64
	BestMAP50           *float64 `gorm:"column:best_map50"`
	BestMAP             *float64 `gorm:"column:best_map"`
	FinalLoss           *float64
	TrainingTimeMinutes *float64
	Status              string `gorm:"size:32;not null"`
	CreatedAt           time.Time
}

func (TrainingSessionModel) TableName() string {
	return "training_sessions"
}

func (m TrainingSessionModel) toEntity() entity.TrainingSession {
	return entity.TrainingSession{
		ID:                  m.ID,
		ModelName:           m.ModelName,
		StartTime:           m.StartTime,
		EndTime:             m.EndTime,
		Epochs:              m.Epochs,
		BatchSize:           m.BatchSize,
		LearningRate:        m.LearningRate,
		TrainImages:         m.TrainImages,
		ValImages:           m.ValImages,
		BestAccuracy:        m.BestAccuracy,
		BestPrecision:       m.BestPrecision,
		BestRecall:          m.BestRecall,
		BestMAP50:           m.BestMAP50,
		BestMAP:             m.BestMAP,
		FinalLoss:           m.FinalLoss,
		TrainingTimeMinutes: m.TrainingTimeMinutes,
		Status:              m.Status,
		CreatedAt:           m.CreatedAt,
	}
}

// ListSessions は作成日時の新しい順に最大limit件の学習セッションを返します。
func (sg *sessionGorm) ListSessions(ctx context.Context, limit int) ([]entity.TrainingSession, error) {
	var models []TrainingSessionModel
	err := sg.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]entity.TrainingSession, 0, len(models))
	for _, m := range models {
		sessions = append(sessions, m.toEntity())
	}
	return sessions, nil
}
