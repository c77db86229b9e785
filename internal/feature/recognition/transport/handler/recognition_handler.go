// Package handler はrecognitionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/transport/http/dto"
	"banknote_backend/internal/feature/recognition/usecase"
)

// RecognitionUsecase はシリアル番号認識のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RecognitionUsecase interface {
	// StartBatch はバッチ認識ジョブを登録し、受理されたジョブを返します。
	StartBatch(ctx context.Context, imageIDs []uint) (entity.RecognitionJob, error)
	// Job はバッチ認識ジョブの現在の状態を返します。
	Job(ctx context.Context, id string) (entity.RecognitionJob, error)
	// Stats は保存済み認識結果の集計値を返します。
	Stats(ctx context.Context) (entity.RecognitionStats, error)
}

// RecognitionHandler はシリアル番号認識のHTTPリクエストを処理します。
type RecognitionHandler struct {
	uc RecognitionUsecase
}

// NewRecognitionHandler はRecognitionHandlerの新しいインスタンスを生成します。
func NewRecognitionHandler(uc RecognitionUsecase) *RecognitionHandler {
	return &RecognitionHandler{uc: uc}
}

// BatchRecognize は複数画像の一括認識ジョブを開始します。
// 処理は非同期で行われ、レスポンスは受付のみを表します。進捗はGetJobで確認します。
//
// エンドポイント: POST /v1/recognition/batch
func (h *RecognitionHandler) BatchRecognize(c *gin.Context) {
	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("バッチ認識リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "image_idsが必要です"})
		return
	}

	job, err := h.uc.StartBatch(c.Request.Context(), req.ImageIDs)
	if err != nil {
		if errors.Is(err, usecase.ErrBatchQueueFull) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "バッチ処理のキューが満杯です。しばらくしてから再試行してください"})
			return
		}
		slog.Error("バッチ認識ジョブの開始に失敗", "error", err, "image_count", len(req.ImageIDs))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "バッチ処理の開始に失敗しました"})
		return
	}

	c.JSON(http.StatusAccepted, dto.BatchStartedResponse{
		JobID:      job.ID,
		ImageCount: job.TotalImages,
		Status:     "batch_processing_started",
	})
}

// GetJob はバッチ認識ジョブの状態を返します。
//
// エンドポイント: GET /v1/recognition/jobs/:id
func (h *RecognitionHandler) GetJob(c *gin.Context) {
	job, err := h.uc.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "ジョブが見つかりません"})
			return
		}
		slog.Error("ジョブ状態の取得に失敗", "error", err, "job_id", c.Param("id"))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "ジョブ状態の取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, dto.JobResponse{
		ID:              job.ID,
		Status:          string(job.Status),
		TotalImages:     job.TotalImages,
		ProcessedImages: job.ProcessedImages,
		SkippedImages:   job.SkippedImages,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt.UTC().Format(time.RFC3339),
		StartedAt:       formatTime(job.StartedAt),
		FinishedAt:      formatTime(job.FinishedAt),
	})
}

// GetStats は保存済み認識結果の統計を返します。
//
// エンドポイント: GET /v1/recognition/stats
func (h *RecognitionHandler) GetStats(c *gin.Context) {
	stats, err := h.uc.Stats(c.Request.Context())
	if err != nil {
		slog.Error("認識統計の取得に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "統計の取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalRecognition:  stats.TotalRecognitions,
		UniqueImages:      stats.UniqueImages,
		AvgConfidence:     stats.AverageConfidence,
		CountryStats:      stats.CountryCounts,
		DenominationStats: stats.DenominationCounts,
	})
}

// formatTime はnil許容のタイムスタンプをRFC3339文字列へ変換します。
func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
