package yolohttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/usecase"
)

// Client はリモートのYOLO推論サービスへリージョン画像を送信するDetector実装です。
// 推論サービス側でモデルの重みを管理するため、本体プロセスはONNXや重みファイルを持ちません。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// detectionPayload は推論サービスの検出1件のJSON表現です。
// 座標はリージョン切り出し画像に対する[0,1]の正規化値です。
type detectionPayload struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ClassIndex int     `json:"class_index"`
	Confidence float64 `json:"confidence"`
}

type predictResponse struct {
	Detections []detectionPayload `json:"detections"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Classes int    `json:"classes"`
}

// Detect はリージョン画像をmultipartでPOSTし、検出結果を返します。
func (c *Client) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "region.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/predict", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yolo inference request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yolo inference returned status %d", res.StatusCode)
	}

	var payload predictResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	detections := make([]entity.Detection, 0, len(payload.Detections))
	for _, d := range payload.Detections {
		detections = append(detections, entity.Detection{
			X:          d.X,
			Y:          d.Y,
			Width:      d.Width,
			Height:     d.Height,
			ClassIndex: d.ClassIndex,
			Confidence: d.Confidence,
		})
	}
	return detections, nil
}

// ModelVersion は結果に記録するモデル識別子を返します。
func (c *Client) ModelVersion() string {
	return c.cfg.ModelVersion
}

// CheckHealth は推論サービスの死活を確認し、サービスが学習済みのクラス数を
// 公開している場合はその数を返します（公開していない場合は0）。
func (c *Client) CheckHealth(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return 0, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("yolo health check failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("yolo health check returned status %d", res.StatusCode)
	}

	var payload healthResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode health response: %w", err)
	}
	return payload.Classes, nil
}
