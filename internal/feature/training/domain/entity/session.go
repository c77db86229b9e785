// Package entity はtrainingフィーチャーのドメインモデルを定義します。
package entity

import "time"

// TrainingSession は外部の学習パイプラインが記録した1回のモデル学習の実績です。
// このサービスでは履歴の参照のみを行い、レコードの作成・更新はしません。
// メトリクス類は学習が完了するまで記録されないためすべてnil許容です。
type TrainingSession struct {
	ID                  uint
	ModelName           string
	StartTime           time.Time
	EndTime             *time.Time
	Epochs              int
	BatchSize           int
	LearningRate        float64
	TrainImages         int
	ValImages           int
	BestAccuracy        *float64
	BestPrecision       *float64
	BestRecall          *float64
	BestMAP50           *float64
	BestMAP             *float64
	FinalLoss           *float64
	TrainingTimeMinutes *float64
	Status              string
	CreatedAt           time.Time
}
