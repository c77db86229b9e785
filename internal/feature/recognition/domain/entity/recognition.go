// Package entity はrecognitionフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Detection は検出モデルの生の出力1件です。永続化はされません。
// 座標はリージョン切り出し画像の幅・高さに対する[0,1]の正規化値で、
// X・Yは矩形の左上隅を指します。
type Detection struct {
	X          float64
	Y          float64
	Width      float64
	Height     float64
	ClassIndex int
	Confidence float64
}

// RecognizedSymbol は認識されたシリアル番号を構成する1文字です。
type RecognizedSymbol struct {
	ID            uint
	RecognitionID uint
	Symbol        string
	Confidence    float64
	X             float64
	Y             float64
	Width         float64
	Height        float64
}

// RecognitionResult は1つのスキャンリージョンに対する認識の結果です。
// Symbolsの並びはX座標昇順（左から右への読み順）で、SerialNumberの
// 文字順と常に一致します。
type RecognitionResult struct {
	ID               uint
	ImageID          uint
	RegionID         uint
	ModelVersion     string
	AlphabetChecksum string
	SerialNumber     string
	Confidence       float64
	ProcessingTime   time.Duration
	CreatedAt        time.Time
	Symbols          []RecognizedSymbol
}

// JobStatus はバッチ認識ジョブの状態です。
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// RecognitionJob はバッチ認識の進行状況レコードです。
// 投げっぱなしにせず、完了・失敗を外部から確認できるようにするための永続レコードです。
type RecognitionJob struct {
	ID              string
	Status          JobStatus
	TotalImages     int
	ProcessedImages int
	SkippedImages   int
	ErrorMessage    string
	CreatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// BatchSummary はバッチ認識における1リージョン分の結果サマリーです。
type BatchSummary struct {
	ImageID       uint
	RegionID      uint
	RecognitionID uint
	SerialNumber  string
	Confidence    float64
}

// RecognitionStats は保存済み認識結果の集計値です。
type RecognitionStats struct {
	TotalRecognitions  int64
	UniqueImages       int64
	AverageConfidence  float64
	CountryCounts      map[string]int64
	DenominationCounts map[string]int64
}
