package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/feature/recognition/usecase"
)

type recognitionGorm struct {
	db *gorm.DB
}

var _ usecase.RecognitionRepository = (*recognitionGorm)(nil)

func NewRecognitionRepository(db *gorm.DB) *recognitionGorm {
	return &recognitionGorm{db: db}
}

// RecognitionResultModel は認識結果の永続化モデルです。
type RecognitionResultModel struct {
	ID               uint   `gorm:"primaryKey"`
	ImageID          uint   `gorm:"not null;index"`
	RegionID         uint   `gorm:"not null;index"`
	ModelVersion     string `gorm:"size:128;not null"`
	AlphabetChecksum string `gorm:"size:16"`
	SerialNumber     string `gorm:"size:128"`
	Confidence       float64
	ProcessingTime   time.Duration `gorm:"not null;default:0"`
	CreatedAt        time.Time

	Symbols []RecognizedSymbolModel `gorm:"foreignKey:RecognitionID;constraint:OnDelete:CASCADE"`
}

func (RecognitionResultModel) TableName() string {
	return "recognition_results"
}

type RecognizedSymbolModel struct {
	ID            uint    `gorm:"primaryKey"`
	RecognitionID uint    `gorm:"not null;index"`
	Symbol        string  `gorm:"size:8;not null"`
	Confidence    float64 `gorm:"not null"`
	X             float64 `gorm:"not null"`
	Y             float64 `gorm:"not null"`
	Width         float64 `gorm:"not null"`
	Height        float64 `gorm:"not null"`
}

func (RecognizedSymbolModel) TableName() string {
	return "recognized_symbols"
}

func toResultModel(e entity.RecognitionResult) RecognitionResultModel {
	return RecognitionResultModel{
		ImageID:          e.ImageID,
		RegionID:         e.RegionID,
		ModelVersion:     e.ModelVersion,
		AlphabetChecksum: e.AlphabetChecksum,
		SerialNumber:     e.SerialNumber,
		Confidence:       e.Confidence,
		ProcessingTime:   e.ProcessingTime,
	}
}

func toSymbolModel(recognitionID uint, e entity.RecognizedSymbol) RecognizedSymbolModel {
	return RecognizedSymbolModel{
		RecognitionID: recognitionID,
		Symbol:        e.Symbol,
		Confidence:    e.Confidence,
		X:             e.X,
		Y:             e.Y,
		Width:         e.Width,
		Height:        e.Height,
	}
}

func toResultEntity(m RecognitionResultModel) entity.RecognitionResult {
	result := entity.RecognitionResult{
		ID:               m.ID,
		ImageID:          m.ImageID,
		RegionID:         m.RegionID,
		ModelVersion:     m.ModelVersion,
		AlphabetChecksum: m.AlphabetChecksum,
		SerialNumber:     m.SerialNumber,
		Confidence:       m.Confidence,
		ProcessingTime:   m.ProcessingTime,
		CreatedAt:        m.CreatedAt,
	}
	for _, s := range m.Symbols {
		result.Symbols = append(result.Symbols, entity.RecognizedSymbol{
			ID:            s.ID,
			RecognitionID: s.RecognitionID,
			Symbol:        s.Symbol,
			Confidence:    s.Confidence,
			X:             s.X,
			Y:             s.Y,
			Width:         s.Width,
			Height:        s.Height,
		})
	}
	return result
}

// AddRecognition は結果とシンボル群を1トランザクションで保存します。
// 部分的に書き込まれた結果が観測されることはありません。
func (r *recognitionGorm) AddRecognition(ctx context.Context, result entity.RecognitionResult) (entity.RecognitionResult, error) {
	m := toResultModel(result)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("insert recognition result: %w", err)
		}
		if len(result.Symbols) == 0 {
			return nil
		}
		symbols := make([]RecognizedSymbolModel, 0, len(result.Symbols))
		for _, s := range result.Symbols {
			symbols = append(symbols, toSymbolModel(m.ID, s))
		}
		if err := tx.Create(&symbols).Error; err != nil {
			return fmt.Errorf("insert recognized symbols: %w", err)
		}
		m.Symbols = symbols
		return nil
	})
	if err != nil {
		return entity.RecognitionResult{}, err
	}
	return toResultEntity(m), nil
}

// countRow はGROUP BY集計クエリの受け皿です。
type countRow struct {
	Label string
	Total int64
}

// Stats は認識結果の件数・平均信頼度と、メタデータと結合した
// 国別・額面別の分布を返します。
func (r *recognitionGorm) Stats(ctx context.Context) (entity.RecognitionStats, error) {
	stats := entity.RecognitionStats{
		CountryCounts:      make(map[string]int64),
		DenominationCounts: make(map[string]int64),
	}
	db := r.db.WithContext(ctx)

	if err := db.Model(&RecognitionResultModel{}).Count(&stats.TotalRecognitions).Error; err != nil {
		return entity.RecognitionStats{}, fmt.Errorf("count recognitions: %w", err)
	}
	if err := db.Model(&RecognitionResultModel{}).Distinct("image_id").Count(&stats.UniqueImages).Error; err != nil {
		return entity.RecognitionStats{}, fmt.Errorf("count unique images: %w", err)
	}
	if err := db.Model(&RecognitionResultModel{}).
		Select("COALESCE(AVG(confidence), 0)").
		Scan(&stats.AverageConfidence).Error; err != nil {
		return entity.RecognitionStats{}, fmt.Errorf("average confidence: %w", err)
	}

	var countries []countRow
	if err := db.Table("recognition_results AS r").
		Select("m.country AS label, COUNT(*) AS total").
		Joins("JOIN banknote_metadata m ON m.image_id = r.image_id").
		Where("m.country <> ''").
		Group("m.country").
		Scan(&countries).Error; err != nil {
		return entity.RecognitionStats{}, fmt.Errorf("count by country: %w", err)
	}
	for _, row := range countries {
		stats.CountryCounts[row.Label] = row.Total
	}

	var denominations []countRow
	if err := db.Table("recognition_results AS r").
		Select("m.denomination AS label, COUNT(*) AS total").
		Joins("JOIN banknote_metadata m ON m.image_id = r.image_id").
		Where("m.denomination <> ''").
		Group("m.denomination").
		Scan(&denominations).Error; err != nil {
		return entity.RecognitionStats{}, fmt.Errorf("count by denomination: %w", err)
	}
	for _, row := range denominations {
		stats.DenominationCounts[row.Label] = row.Total
	}

	return stats, nil
}
