// Package handler はdatasetフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"banknote_backend/internal/feature/dataset/transport/http/dto"
)

// DatasetUsecase はデータセット組み立てのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DatasetUsecase interface {
	PrepareDataset(ctx context.Context) (int, error)
}

// DatasetHandler はデータセット組み立てのHTTPリクエストを処理します。
type DatasetHandler struct {
	uc DatasetUsecase
}

// NewDatasetHandler はDatasetHandlerの新しいインスタンスを生成します。
func NewDatasetHandler(uc DatasetUsecase) *DatasetHandler {
	return &DatasetHandler{uc: uc}
}

// Prepare は取り込みディレクトリの画像をカタログへ登録し、YOLO学習用データセットを組み立てます。
//
// エンドポイント: POST /v1/dataset/prepare
func (h *DatasetHandler) Prepare(c *gin.Context) {
	count, err := h.uc.PrepareDataset(c.Request.Context())
	if err != nil {
		slog.Error("データセットの組み立てに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.PrepareResponse{Status: "success", ProcessedCount: count})
}
