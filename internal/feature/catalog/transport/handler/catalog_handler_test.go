package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banknote_backend/internal/feature/catalog/domain/entity"
	"banknote_backend/internal/feature/catalog/transport/handler"
	recognitionentity "banknote_backend/internal/feature/recognition/domain/entity"
)

// mockCatalogUsecase はCatalogUsecaseインターフェースのモック実装です。
type mockCatalogUsecase struct {
	RegisterImageFunc func(ctx context.Context, originalName, filePath string) (entity.Image, error)
	ListImagesFunc    func(ctx context.Context) ([]entity.Image, error)

	RegisteredNames []string
	RegisteredPaths []string
}

func (m *mockCatalogUsecase) RegisterImage(ctx context.Context, originalName, filePath string) (entity.Image, error) {
	m.RegisteredNames = append(m.RegisteredNames, originalName)
	m.RegisteredPaths = append(m.RegisteredPaths, filePath)
	if m.RegisterImageFunc != nil {
		return m.RegisterImageFunc(ctx, originalName, filePath)
	}
	return entity.Image{}, nil
}

func (m *mockCatalogUsecase) ListImages(ctx context.Context) ([]entity.Image, error) {
	if m.ListImagesFunc != nil {
		return m.ListImagesFunc(ctx)
	}
	return nil, nil
}

// mockRegionRecognizer はRegionRecognizerインターフェースのモック実装です。
type mockRegionRecognizer struct {
	RecognizeRegionFunc func(ctx context.Context, imageID, regionID uint) (recognitionentity.RecognitionResult, error)
}

func (m *mockRegionRecognizer) RecognizeRegion(ctx context.Context, imageID, regionID uint) (recognitionentity.RecognitionResult, error) {
	if m.RecognizeRegionFunc != nil {
		return m.RecognizeRegionFunc(ctx, imageID, regionID)
	}
	return recognitionentity.RecognitionResult{}, nil
}

// createMultipartRequest はテスト用のマルチパートリクエストを生成するヘルパー関数です。
func createMultipartRequest(t *testing.T, fieldName, fileName string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		t.Fatalf("failed to copy content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/images", body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// registeredImage は2つのリージョンを持つ登録済み画像のフィクスチャを返します。
func registeredImage(id uint) entity.Image {
	return entity.Image{
		ID: id,
		Regions: []entity.ScanRegion{
			{ID: 11, ImageID: id, Name: "serial_number_1", X: 0.1, Y: 0.1, Width: 0.4, Height: 0.1},
			{ID: 12, ImageID: id, Name: "serial_number_2", X: 0.5, Y: 0.1, Width: 0.4, Height: 0.1},
		},
	}
}

func TestCatalogHandler_Upload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	storedResult := recognitionentity.RecognitionResult{
		ID:             42,
		ImageID:        7,
		RegionID:       11,
		ModelVersion:   "best.pt",
		SerialNumber:   "AB123",
		Confidence:     0.9,
		ProcessingTime: 250 * time.Millisecond,
		Symbols: []recognitionentity.RecognizedSymbol{
			{Symbol: "A", Confidence: 0.9, X: 0.1, Y: 0.5, Width: 0.08, Height: 0.12},
		},
	}

	tests := []struct {
		name           string
		setupRequest   func(t *testing.T) *http.Request
		mockRegister   func(ctx context.Context, originalName, filePath string) (entity.Image, error)
		mockRecognize  func(ctx context.Context, imageID, regionID uint) (recognitionentity.RecognitionResult, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: image registered and first region recognized",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "image", "USD_100_2020_AB123.jpg", []byte("fake-image"))
			},
			mockRegister: func(ctx context.Context, originalName, filePath string) (entity.Image, error) {
				return registeredImage(7), nil
			},
			mockRecognize: func(ctx context.Context, imageID, regionID uint) (recognitionentity.RecognitionResult, error) {
				return storedResult, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"image_id":7,"recognition_id":42,"result":{` +
				`"serial_number":"AB123","confidence":0.9,"processing_time":0.25,"model_version":"best.pt","region_id":11,` +
				`"symbols":[{"symbol":"A","confidence":0.9,"x":0.1,"y":0.5,"width":0.08,"height":0.12}]}}`,
		},
		{
			name: "failure: no image field",
			setupRequest: func(t *testing.T) *http.Request {
				req, _ := http.NewRequest(http.MethodPost, "/images", bytes.NewReader(nil))
				return req
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"画像ファイルが必要です"}`,
		},
		{
			name: "failure: registration fails",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "image", "scan.jpg", []byte("fake-image"))
			},
			mockRegister: func(ctx context.Context, originalName, filePath string) (entity.Image, error) {
				return entity.Image{}, errors.New("database connection failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"画像の登録に失敗しました"}`,
		},
		{
			name: "failure: recognition cannot be persisted",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "image", "scan.jpg", []byte("fake-image"))
			},
			mockRegister: func(ctx context.Context, originalName, filePath string) (entity.Image, error) {
				return registeredImage(7), nil
			},
			mockRecognize: func(ctx context.Context, imageID, regionID uint) (recognitionentity.RecognitionResult, error) {
				return recognitionentity.RecognitionResult{}, errors.New("database connection failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"認識結果の保存に失敗しました"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockCatalogUsecase{RegisterImageFunc: tt.mockRegister}
			mockRec := &mockRegionRecognizer{RecognizeRegionFunc: tt.mockRecognize}
			h := handler.NewCatalogHandler(mockUC, mockRec, t.TempDir())

			router := gin.New()
			router.POST("/images", h.Upload)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.setupRequest(t))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestCatalogHandler_Upload_SavesFile はアップロードされたファイルが保存ディレクトリ直下に
// ベース名で保存され、その保存先パスがユースケースへ渡されることを検証します。
func TestCatalogHandler_Upload_SavesFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uploadDir := t.TempDir()
	content := []byte("banknote-scan-bytes")

	mockUC := &mockCatalogUsecase{
		RegisterImageFunc: func(ctx context.Context, originalName, filePath string) (entity.Image, error) {
			return registeredImage(3), nil
		},
	}
	recognized := false
	mockRec := &mockRegionRecognizer{
		RecognizeRegionFunc: func(ctx context.Context, imageID, regionID uint) (recognitionentity.RecognitionResult, error) {
			recognized = true
			assert.Equal(t, uint(3), imageID)
			assert.Equal(t, uint(11), regionID, "the first scan region should be recognized")
			return recognitionentity.RecognitionResult{ID: 1}, nil
		},
	}
	h := handler.NewCatalogHandler(mockUC, mockRec, uploadDir)

	router := gin.New()
	router.POST("/images", h.Upload)

	// パストラバーサルを含むファイル名はベース名へ落とされる
	w := httptest.NewRecorder()
	router.ServeHTTP(w, createMultipartRequest(t, "image", "../../evil.jpg", content))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, recognized)

	saved, err := os.ReadFile(filepath.Join(uploadDir, "evil.jpg"))
	require.NoError(t, err, "file should be saved under the upload dir with its base name")
	assert.Equal(t, content, saved)

	require.Len(t, mockUC.RegisteredNames, 1)
	assert.Equal(t, "evil.jpg", mockUC.RegisteredNames[0])
	assert.Equal(t, filepath.Join(uploadDir, "evil.jpg"), mockUC.RegisteredPaths[0])
}

func TestCatalogHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	year := 2020

	tests := []struct {
		name           string
		mockList       func(ctx context.Context) ([]entity.Image, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: returns images with metadata",
			mockList: func(ctx context.Context) ([]entity.Image, error) {
				return []entity.Image{
					{
						ID:           2,
						OriginalName: "USD_100_2020_AB123.jpg",
						HashName:     "deadbeef.jpg",
						FilePath:     "uploads/USD_100_2020_AB123.jpg",
						Metadata: &entity.BanknoteMetadata{
							Country:      "USA",
							Denomination: "100",
							SerialNumber: "USD_100_2020_AB123",
							Currency:     "USD",
							Year:         &year,
						},
					},
					{
						ID:           1,
						OriginalName: "scan.png",
						HashName:     "cafebabe.png",
						FilePath:     "uploads/scan.png",
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"images":[` +
				`{"id":2,"original_name":"USD_100_2020_AB123.jpg","hash_name":"deadbeef.jpg","file_path":"uploads/USD_100_2020_AB123.jpg",` +
				`"country":"USA","denomination":"100","serial_number":"USD_100_2020_AB123","currency":"USD","year":2020},` +
				`{"id":1,"original_name":"scan.png","hash_name":"cafebabe.png","file_path":"uploads/scan.png",` +
				`"country":"","denomination":"","serial_number":"","currency":"","year":null}]}`,
		},
		{
			name: "success: returns empty list when catalog is empty",
			mockList: func(ctx context.Context) ([]entity.Image, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"images":[]}`,
		},
		{
			name: "failure: usecase returns error",
			mockList: func(ctx context.Context) ([]entity.Image, error) {
				return nil, errors.New("database connection failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"database connection failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockUC := &mockCatalogUsecase{ListImagesFunc: tt.mockList}
			h := handler.NewCatalogHandler(mockUC, &mockRegionRecognizer{}, t.TempDir())

			router := gin.New()
			router.GET("/images", h.List)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/images", nil)

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
