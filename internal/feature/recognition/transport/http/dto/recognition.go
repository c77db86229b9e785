// Package dto はrecognitionフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "banknote_backend/internal/feature/recognition/domain/entity"

// ErrorResponse はエラー時の共通レスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// SymbolResponse はシリアル番号を構成する1文字のレスポンスDTOです。
// 座標はリージョン切り出し画像に対する[0,1]の正規化値です。
type SymbolResponse struct {
	Symbol     string  `json:"symbol"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// RecognitionResultResponse は1リージョン分の認識結果のレスポンスDTOです。
type RecognitionResultResponse struct {
	SerialNumber   string           `json:"serial_number"`
	Confidence     float64          `json:"confidence"`
	ProcessingTime float64          `json:"processing_time"` // 秒
	ModelVersion   string           `json:"model_version"`
	RegionID       uint             `json:"region_id"`
	Symbols        []SymbolResponse `json:"symbols"`
}

// NewRecognitionResultResponse はドメインの認識結果をレスポンスDTOへ変換します。
// 画像アップロードとバッチ系の両方のハンドラーが同じ形で返すため、変換をここに集約しています。
func NewRecognitionResultResponse(r entity.RecognitionResult) RecognitionResultResponse {
	symbols := make([]SymbolResponse, 0, len(r.Symbols))
	for _, s := range r.Symbols {
		symbols = append(symbols, SymbolResponse{
			Symbol:     s.Symbol,
			Confidence: s.Confidence,
			X:          s.X,
			Y:          s.Y,
			Width:      s.Width,
			Height:     s.Height,
		})
	}
	return RecognitionResultResponse{
		SerialNumber:   r.SerialNumber,
		Confidence:     r.Confidence,
		ProcessingTime: r.ProcessingTime.Seconds(),
		ModelVersion:   r.ModelVersion,
		RegionID:       r.RegionID,
		Symbols:        symbols,
	}
}

// BatchRequest はバッチ認識開始エンドポイントのリクエストボディを表します。
type BatchRequest struct {
	ImageIDs []uint `json:"image_ids" binding:"required,min=1"`
}

// BatchStartedResponse はバッチ認識の受付応答です。処理自体は非同期で進みます。
type BatchStartedResponse struct {
	JobID      string `json:"job_id"`
	ImageCount int    `json:"image_count"`
	Status     string `json:"status"`
}

// JobResponse はバッチ認識ジョブの状態レスポンスDTOです。
type JobResponse struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	TotalImages     int     `json:"total_images"`
	ProcessedImages int     `json:"processed_images"`
	SkippedImages   int     `json:"skipped_images"`
	ErrorMessage    string  `json:"error_message,omitempty"`
	CreatedAt       string  `json:"created_at"`
	StartedAt       *string `json:"started_at,omitempty"`
	FinishedAt      *string `json:"finished_at,omitempty"`
}

// StatsResponse は認識統計のレスポンスDTOです。キー名は集計クエリの列名に合わせています。
type StatsResponse struct {
	TotalRecognition  int64            `json:"total_recognition"`
	UniqueImages      int64            `json:"unique_images"`
	AvgConfidence     float64          `json:"avg_confidence"`
	CountryStats      map[string]int64 `json:"country_stats"`
	DenominationStats map[string]int64 `json:"denomination_stats"`
}
