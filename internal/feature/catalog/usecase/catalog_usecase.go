// Package usecase は紙幣画像カタログのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"banknote_backend/internal/feature/catalog/domain/entity"
	"banknote_backend/internal/shared/contenthash"
)

// ImageRepository は画像カタログの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ImageRepository interface {
	// Register は画像・リージョン・メタデータを1トランザクションで保存します。
	// 同じ内容ハッシュの画像が既にある場合は何も書き込まず、既存の集約を返します。
	// 戻り値のboolは新規に作成されたかどうかを表します。
	Register(ctx context.Context, img entity.Image, regions []entity.ScanRegion, meta entity.BanknoteMetadata) (entity.Image, bool, error)
	// FindByID はリージョンとメタデータ込みの画像集約を取得します。
	FindByID(ctx context.Context, id uint) (entity.Image, error)
	// ListWithMetadata は全画像をメタデータ込みで新しい順に返します。
	ListWithMetadata(ctx context.Context) ([]entity.Image, error)
}

// catalogUsecase は画像カタログ操作のユースケースを定義します。
type catalogUsecase struct {
	images ImageRepository
}

// NewCatalogUsecase はcatalogUsecaseの新しいインスタンスを生成します。
func NewCatalogUsecase(images ImageRepository) *catalogUsecase {
	return &catalogUsecase{images: images}
}

// RegisterImage はファイルを内容ハッシュで重複排除しながらカタログへ登録します。
// 新規画像には既定の2つのスキャンリージョンと、ファイル名から推測した
// メタデータが作成されます。既知の内容の場合は既存の集約をそのまま返します。
func (cu *catalogUsecase) RegisterImage(ctx context.Context, originalName, filePath string) (entity.Image, error) {
	hash, err := contenthash.HashFile(filePath)
	if err != nil {
		return entity.Image{}, fmt.Errorf("hash image: %w", err)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return entity.Image{}, fmt.Errorf("stat image: %w", err)
	}

	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	img := entity.Image{
		OriginalName: base,
		HashName:     hash + ext,
		FilePath:     filePath,
		FileSize:     info.Size(),
		FileHash:     hash,
	}

	stored, created, err := cu.images.Register(ctx, img, DefaultRegions(), ExtractMetadata(stem))
	if err != nil {
		return entity.Image{}, fmt.Errorf("register image: %w", err)
	}

	if created {
		slog.Info("画像をカタログへ登録しました",
			"image_id", stored.ID, "file", base, "hash_name", stored.HashName)
	} else {
		slog.Info("同じ内容の画像が登録済みのため既存レコードを使用します",
			"image_id", stored.ID, "file", base, "existing_file", stored.OriginalName)
	}
	return stored, nil
}

// GetImage はリージョンとメタデータ込みの画像集約を取得します。
func (cu *catalogUsecase) GetImage(ctx context.Context, id uint) (entity.Image, error) {
	return cu.images.FindByID(ctx, id)
}

// ListImages は登録済みの全画像をメタデータ込みで返します。
func (cu *catalogUsecase) ListImages(ctx context.Context) ([]entity.Image, error) {
	return cu.images.ListWithMetadata(ctx)
}
