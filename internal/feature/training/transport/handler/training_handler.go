// Package handler はtrainingフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"banknote_backend/internal/feature/training/domain/entity"
	"banknote_backend/internal/feature/training/transport/http/dto"
)

// TrainingUsecase は学習セッション履歴のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type TrainingUsecase interface {
	ListSessions(ctx context.Context, limit int) ([]entity.TrainingSession, error)
}

// TrainingHandler は学習セッション履歴のHTTPリクエストを処理します。
type TrainingHandler struct {
	uc TrainingUsecase
}

// NewTrainingHandler はTrainingHandlerの新しいインスタンスを生成します。
func NewTrainingHandler(uc TrainingUsecase) *TrainingHandler {
	return &TrainingHandler{uc: uc}
}

// ListSessions は学習セッション履歴を新しい順に返します。
//
// エンドポイント例:
// GET /v1/training/sessions?limit=10
func (h *TrainingHandler) ListSessions(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	// 数値でない場合は0になり、usecase側の既定値が使われる
	limit, _ := strconv.Atoi(limitStr)

	sessions, err := h.uc.ListSessions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.SessionItem, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.SessionItem{
			ID:                  s.ID,
			ModelName:           s.ModelName,
			StartTime:           s.StartTime.UTC().Format(time.RFC3339),
			EndTime:             formatTime(s.EndTime),
			Epochs:              s.Epochs,
			BatchSize:           s.BatchSize,
			LearningRate:        s.LearningRate,
			TrainImages:         s.TrainImages,
			ValImages:           s.ValImages,
			BestAccuracy:        s.BestAccuracy,
			BestPrecision:       s.BestPrecision,
			BestRecall:          s.BestRecall,
			BestMAP50:           s.BestMAP50,
			BestMAP:             s.BestMAP,
			FinalLoss:           s.FinalLoss,
			TrainingTimeMinutes: s.TrainingTimeMinutes,
			Status:              s.Status,
			CreatedAt:           s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, dto.SessionsResponse{Sessions: out})
}

// formatTime はnil許容のタイムスタンプをRFC3339文字列へ変換します。
func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
