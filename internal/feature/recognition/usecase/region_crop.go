package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	catalogentity "banknote_backend/internal/feature/catalog/domain/entity"
)

// cropRegion はリージョンの正規化矩形をピクセル座標へ変換して画像を切り出し、
// PNGバイト列として返します。矩形が画像外にはみ出す場合は画像内に丸め、
// 丸めた結果が空になる場合は画像全体を使用します。
func cropRegion(imagePath string, region catalogentity.ScanRegion) ([]byte, error) {
	src, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", imagePath, err)
	}

	bounds := src.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	rect := image.Rect(
		bounds.Min.X+int(region.X*w),
		bounds.Min.Y+int(region.Y*h),
		bounds.Min.X+int((region.X+region.Width)*w),
		bounds.Min.Y+int((region.Y+region.Height)*h),
	).Intersect(bounds)

	cropped := src
	if !rect.Empty() {
		cropped = imaging.Crop(src, rect)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("encode region crop: %w", err)
	}
	return buf.Bytes(), nil
}
