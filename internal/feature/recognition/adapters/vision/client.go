// Package vision はGoogle Cloud Vision APIを使用したシンボル検出クライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/usecase"
	"banknote_backend/internal/shared/alphabet"
)

// modelVersion はVision API経由の結果に記録するモデル識別子です。
const modelVersion = "vision-document-text"

// SymbolDetector はDOCUMENT_TEXT_DETECTIONの文字単位の結果をDetectionへ変換します。
// アルファベットに無い文字（ノイズや周辺の印字）は検出結果から除外されます。
type SymbolDetector struct {
	client *gvision.ImageAnnotatorClient
	alpha  *alphabet.Alphabet
}

// SymbolDetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*SymbolDetector)(nil)

// NewSymbolDetector はADCを使用してSymbolDetectorの新しいインスタンスを生成します。
func NewSymbolDetector(ctx context.Context, alpha *alphabet.Alphabet) (*SymbolDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &SymbolDetector{client: client, alpha: alpha}, nil
}

// Close はVision APIクライアントを解放します。
func (v *SymbolDetector) Close() error {
	return v.client.Close()
}

// ModelVersion は結果に記録するモデル識別子を返します。
func (v *SymbolDetector) ModelVersion() string {
	return modelVersion
}

// Detect はリージョン画像から文字を1文字ずつ検出します。
// Vision APIのピクセル座標は画像サイズで[0,1]に正規化して返します。
func (v *SymbolDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("vision API error: %s", r.Error.Message)
	}
	if r.FullTextAnnotation == nil {
		return nil, nil
	}

	var detections []entity.Detection
	for _, page := range r.FullTextAnnotation.Pages {
		pw := float64(page.Width)
		ph := float64(page.Height)
		if pw <= 0 || ph <= 0 {
			continue
		}
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					for _, symbol := range word.Symbols {
						classIndex, ok := v.alpha.IndexOf(symbol.Text)
						if !ok {
							continue
						}
						x, y, w, h := normalizedBox(symbol.BoundingBox, pw, ph)
						detections = append(detections, entity.Detection{
							X:          x,
							Y:          y,
							Width:      w,
							Height:     h,
							ClassIndex: classIndex,
							Confidence: float64(symbol.Confidence),
						})
					}
				}
			}
		}
	}
	return detections, nil
}

// normalizedBox は頂点列を囲む矩形を計算し、左上隅基準のXYWHへ正規化します。
func normalizedBox(poly *visionpb.BoundingPoly, pageWidth, pageHeight float64) (x, y, w, h float64) {
	if poly == nil || len(poly.Vertices) == 0 {
		return 0, 0, 0, 0
	}

	minX, minY := float64(poly.Vertices[0].X), float64(poly.Vertices[0].Y)
	maxX, maxY := minX, minY
	for _, v := range poly.Vertices[1:] {
		vx, vy := float64(v.X), float64(v.Y)
		if vx < minX {
			minX = vx
		}
		if vx > maxX {
			maxX = vx
		}
		if vy < minY {
			minY = vy
		}
		if vy > maxY {
			maxY = vy
		}
	}
	return minX / pageWidth, minY / pageHeight, (maxX - minX) / pageWidth, (maxY - minY) / pageHeight
}
