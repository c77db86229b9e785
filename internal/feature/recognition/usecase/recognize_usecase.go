package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	catalogentity "banknote_backend/internal/feature/catalog/domain/entity"
	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/shared/alphabet"
	"banknote_backend/internal/shared/ratelimiter"
)

// Detector は画像バイト列からシンボルを検出するモデルを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Detector interface {
	// Detect はリージョン切り出し画像から検出結果を返します。
	Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error)
	// ModelVersion は結果に記録するモデル識別子を返します。
	ModelVersion() string
}

// ImageCatalog は認識対象の画像集約を取得する読み取りインターフェースです。
type ImageCatalog interface {
	FindByID(ctx context.Context, id uint) (catalogentity.Image, error)
}

// RecognitionRepository は認識結果の永続化レイヤーを抽象化します。
type RecognitionRepository interface {
	// AddRecognition は結果とシンボル群を1トランザクションで保存し、採番済みの結果を返します。
	AddRecognition(ctx context.Context, result entity.RecognitionResult) (entity.RecognitionResult, error)
	// Stats は保存済み認識結果の集計値を返します。
	Stats(ctx context.Context) (entity.RecognitionStats, error)
}

// JobRepository はバッチ認識ジョブの状態レコードを管理します。
type JobRepository interface {
	CreateJob(ctx context.Context, job entity.RecognitionJob) error
	UpdateJob(ctx context.Context, job entity.RecognitionJob) error
	FindJob(ctx context.Context, id string) (entity.RecognitionJob, error)
}

// TaskRunner はバックグラウンド実行基盤を抽象化します。
type TaskRunner interface {
	// Submit はタスクを実行キューへ登録します。キューが満杯の場合はエラーを返します。
	Submit(task func(ctx context.Context)) error
}

// recognitionUsecase はシリアル番号認識のユースケースを定義します。
type recognitionUsecase struct {
	detector   Detector // nilの場合は常にフォールバック結果になる
	normalizer *Normalizer
	alpha      *alphabet.Alphabet
	images     ImageCatalog
	results    RecognitionRepository
	jobs       JobRepository
	runner     TaskRunner
	limiter    ratelimiter.RateLimiterInterface // バッチ経路での検出器呼び出し頻度を制限する。nil可
}

// NewRecognitionUsecase はrecognitionUsecaseの新しいインスタンスを生成します。
// detectorにはnilを渡せます。その場合すべての認識はファイル名由来の
// フォールバック結果になります。
func NewRecognitionUsecase(
	detector Detector,
	alpha *alphabet.Alphabet,
	images ImageCatalog,
	results RecognitionRepository,
	jobs JobRepository,
	runner TaskRunner,
	limiter ratelimiter.RateLimiterInterface,
) *recognitionUsecase {
	return &recognitionUsecase{
		detector:   detector,
		normalizer: NewNormalizer(alpha),
		alpha:      alpha,
		images:     images,
		results:    results,
		jobs:       jobs,
		runner:     runner,
		limiter:    limiter,
	}
}

// Recognize は1リージョン分の認識を実行します。検出器が無い・失敗した場合でも
// フォールバック結果を合成して返すため、エラーは返しません。
// 結果は永続化されません。保存まで行う場合はRecognizeRegionを使用します。
func (ru *recognitionUsecase) Recognize(ctx context.Context, imagePath string, region catalogentity.ScanRegion) entity.RecognitionResult {
	start := time.Now()
	stem := fileStem(imagePath)

	var (
		serial       string
		confidence   float64
		symbols      []entity.RecognizedSymbol
		modelVersion = FallbackModelVersion
	)

	switch detections, err := ru.detect(ctx, imagePath, region); {
	case ru.detector == nil:
		serial, confidence, symbols = ru.normalizer.Fallback(stem)
	case err != nil:
		slog.Warn("検出に失敗したためフォールバック結果を使用します",
			"image", imagePath, "region", region.Name, "error", err)
		serial, confidence, symbols = ru.normalizer.Fallback(stem)
	default:
		var fellBack bool
		serial, confidence, symbols, fellBack = ru.normalizer.Normalize(detections, stem)
		if !fellBack {
			modelVersion = ru.detector.ModelVersion()
		}
	}

	return entity.RecognitionResult{
		ImageID:          region.ImageID,
		RegionID:         region.ID,
		ModelVersion:     modelVersion,
		AlphabetChecksum: ru.alpha.Checksum(),
		SerialNumber:     serial,
		Confidence:       confidence,
		ProcessingTime:   time.Since(start),
		Symbols:          symbols,
	}
}

// detect はリージョンを切り出して検出器に渡します。検出器が無い場合は何もしません。
func (ru *recognitionUsecase) detect(ctx context.Context, imagePath string, region catalogentity.ScanRegion) ([]entity.Detection, error) {
	if ru.detector == nil {
		return nil, nil
	}
	crop, err := cropRegion(imagePath, region)
	if err != nil {
		return nil, fmt.Errorf("crop region: %w", err)
	}
	detections, err := ru.detector.Detect(ctx, crop)
	if err != nil {
		return nil, fmt.Errorf("detect symbols: %w", err)
	}
	return detections, nil
}

// RecognizeRegion は指定画像の指定リージョンを認識し、結果を保存して返します。
func (ru *recognitionUsecase) RecognizeRegion(ctx context.Context, imageID, regionID uint) (entity.RecognitionResult, error) {
	img, err := ru.images.FindByID(ctx, imageID)
	if err != nil {
		return entity.RecognitionResult{}, err
	}

	var region *catalogentity.ScanRegion
	for i := range img.Regions {
		if img.Regions[i].ID == regionID {
			region = &img.Regions[i]
			break
		}
	}
	if region == nil {
		return entity.RecognitionResult{}, ErrRegionNotFound
	}

	result := ru.Recognize(ctx, img.FilePath, *region)
	stored, err := ru.results.AddRecognition(ctx, result)
	if err != nil {
		return entity.RecognitionResult{}, fmt.Errorf("save recognition result: %w", err)
	}

	slog.Info("認識結果を保存しました",
		"image_id", imageID, "region", region.Name,
		"serial_number", stored.SerialNumber, "confidence", stored.Confidence,
		"model_version", stored.ModelVersion)
	return stored, nil
}

// Stats は保存済み認識結果の集計値を返します。
func (ru *recognitionUsecase) Stats(ctx context.Context) (entity.RecognitionStats, error) {
	return ru.results.Stats(ctx)
}

// Job はバッチ認識ジョブの現在の状態を返します。
func (ru *recognitionUsecase) Job(ctx context.Context, id string) (entity.RecognitionJob, error) {
	return ru.jobs.FindJob(ctx, id)
}

// fileStem はパスから拡張子を除いたファイル名部分を返します。
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
