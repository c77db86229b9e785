// Package handler はcatalogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"banknote_backend/internal/feature/catalog/domain/entity"
	"banknote_backend/internal/feature/catalog/transport/http/dto"
	recognitionentity "banknote_backend/internal/feature/recognition/domain/entity"
	recognitiondto "banknote_backend/internal/feature/recognition/transport/http/dto"
)

// CatalogUsecase は画像カタログ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CatalogUsecase interface {
	// RegisterImage はファイルを内容ハッシュで重複排除しながらカタログへ登録します。
	RegisterImage(ctx context.Context, originalName, filePath string) (entity.Image, error)
	// ListImages は登録済みの全画像をメタデータ込みで返します。
	ListImages(ctx context.Context) ([]entity.Image, error)
}

// RegionRecognizer はアップロード直後にその場で認識を実行するためのインターフェースです。
type RegionRecognizer interface {
	RecognizeRegion(ctx context.Context, imageID, regionID uint) (recognitionentity.RecognitionResult, error)
}

// CatalogHandler は画像カタログのHTTPリクエストを処理します。
type CatalogHandler struct {
	catalog    CatalogUsecase
	recognizer RegionRecognizer
	uploadDir  string
}

// NewCatalogHandler はCatalogHandlerの新しいインスタンスを生成します。
// アップロードされたファイルはuploadDir直下に保存されます。
func NewCatalogHandler(catalog CatalogUsecase, recognizer RegionRecognizer, uploadDir string) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, recognizer: recognizer, uploadDir: uploadDir}
}

// Upload は画像をアップロードしてカタログへ登録し、最初のスキャンリージョンを
// その場で認識して結果を返します。同じ内容の画像を再アップロードした場合は
// 既存レコードに対する認識のみが実行されます。
//
// エンドポイント: POST /v1/images
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル）
func (h *CatalogHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "画像ファイルが必要です"})
		return
	}

	// パス区切りを含むファイル名を拒否し、ベース名のみを保存先に使います。
	name := filepath.Base(file.Filename)
	if name == "." || name == string(filepath.Separator) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "ファイルが選択されていません"})
		return
	}

	dst := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		slog.Error("画像ファイルの保存に失敗", "error", err, "file", name)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "画像の保存に失敗しました"})
		return
	}

	img, err := h.catalog.RegisterImage(c.Request.Context(), name, dst)
	if err != nil {
		slog.Error("画像の登録に失敗", "error", err, "file", name)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "画像の登録に失敗しました"})
		return
	}
	if len(img.Regions) == 0 {
		slog.Error("画像にスキャンリージョンがありません", "image_id", img.ID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "画像の登録に失敗しました"})
		return
	}

	result, err := h.recognizer.RecognizeRegion(c.Request.Context(), img.ID, img.Regions[0].ID)
	if err != nil {
		slog.Error("アップロード画像の認識に失敗", "error", err, "image_id", img.ID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "認識結果の保存に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		ImageID:       img.ID,
		RecognitionID: result.ID,
		Result:        recognitiondto.NewRecognitionResultResponse(result),
	})
}

// List は登録済み画像の一覧をメタデータ込みで返します。
//
// エンドポイント: GET /v1/images
func (h *CatalogHandler) List(c *gin.Context) {
	images, err := h.catalog.ListImages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.ImageItem, 0, len(images))
	for _, img := range images {
		item := dto.ImageItem{
			ID:           img.ID,
			OriginalName: img.OriginalName,
			HashName:     img.HashName,
			FilePath:     img.FilePath,
		}
		if img.Metadata != nil {
			item.Country = img.Metadata.Country
			item.Denomination = img.Metadata.Denomination
			item.SerialNumber = img.Metadata.SerialNumber
			item.Currency = img.Metadata.Currency
			item.Year = img.Metadata.Year
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, dto.ImagesResponse{Images: out})
}
