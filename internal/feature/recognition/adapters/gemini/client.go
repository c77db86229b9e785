// Package gemini はGoogle Gemini APIを使用したシンボル検出クライアントを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/usecase"
	"banknote_backend/internal/shared/alphabet"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// detectPrompt は1文字ずつのバウンディングボックス付き読み取りを要求します。
	detectPrompt = "この画像は紙幣のシリアル番号領域の切り出しです。" +
		"印字されている文字を1文字ずつ読み取り、左上隅を原点とする[0,1]正規化座標の" +
		"バウンディングボックスと信頼度を付けて返してください。読み取れない場合は空の配列を返してください。"
)

// SymbolDetector はGeminiの構造化出力でシリアル番号の文字を検出します。
type SymbolDetector struct {
	client *genai.Client
	model  string
	alpha  *alphabet.Alphabet
}

// SymbolDetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*SymbolDetector)(nil)

// NewSymbolDetector はADCを使用してSymbolDetectorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewSymbolDetector(ctx context.Context, alpha *alphabet.Alphabet) (*SymbolDetector, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &SymbolDetector{client: client, model: DefaultModel, alpha: alpha}, nil
}

// ModelVersion は結果に記録するモデル識別子を返します。
func (g *SymbolDetector) ModelVersion() string {
	return g.model
}

// detectedChar はGeminiに要求する構造化出力の1要素です。
type detectedChar struct {
	Char       string  `json:"char"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
}

// detectSchema はレスポンスをdetectedCharの配列に固定します。
var detectSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"char":       {Type: genai.TypeString},
			"x":          {Type: genai.TypeNumber},
			"y":          {Type: genai.TypeNumber},
			"width":      {Type: genai.TypeNumber},
			"height":     {Type: genai.TypeNumber},
			"confidence": {Type: genai.TypeNumber},
		},
		Required: []string{"char", "x", "y", "width", "height", "confidence"},
	},
}

// Detect はリージョン画像をGeminiへ送り、検出された文字をDetectionへ変換します。
// アルファベットに無い文字は除外されます。
func (g *SymbolDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(imageData, "image/png"),
			genai.NewPartFromText(detectPrompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   detectSchema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}

	var chars []detectedChar
	if err := json.Unmarshal([]byte(resp.Text()), &chars); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	detections := make([]entity.Detection, 0, len(chars))
	for _, c := range chars {
		classIndex, ok := g.alpha.IndexOf(c.Char)
		if !ok {
			continue
		}
		detections = append(detections, entity.Detection{
			X:          c.X,
			Y:          c.Y,
			Width:      c.Width,
			Height:     c.Height,
			ClassIndex: classIndex,
			Confidence: c.Confidence,
		})
	}
	return detections, nil
}
