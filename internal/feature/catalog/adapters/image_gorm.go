package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"banknote_backend/internal/feature/catalog/domain/entity"
	"banknote_backend/internal/feature/catalog/usecase"
)

type imageGorm struct {
	db *gorm.DB
}

var _ usecase.ImageRepository = (*imageGorm)(nil)

func NewImageRepository(db *gorm.DB) *imageGorm {
	return &imageGorm{db: db}
}

// ImageModel は画像カタログの永続化モデルです。file_hashの一意制約が重複排除の根拠になります。
type ImageModel struct {
	ID           uint   `gorm:"primaryKey"`
	OriginalName string `gorm:"size:255;not null"`
	HashName     string `gorm:"size:255;not null"`
	FilePath     string `gorm:"size:512;not null"`
	FileSize     int64  `gorm:"not null;default:0"`
	FileHash     string `gorm:"size:64;not null;uniqueIndex:idx_images_file_hash"`
	CreatedAt    time.Time

	Regions  []ScanRegionModel      `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
	Metadata *BanknoteMetadataModel `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
}

func (ImageModel) TableName() string {
	return "images"
}

type ScanRegionModel struct {
	ID         uint    `gorm:"primaryKey"`
	ImageID    uint    `gorm:"not null;index"`
	RegionName string  `gorm:"size:64;not null"`
	X          float64 `gorm:"not null"`
	Y          float64 `gorm:"not null"`
	Width      float64 `gorm:"not null"`
	Height     float64 `gorm:"not null"`
}

func (ScanRegionModel) TableName() string {
	return "scan_regions"
}

type BanknoteMetadataModel struct {
	ID             uint   `gorm:"primaryKey"`
	ImageID        uint   `gorm:"not null;index"`
	Country        string `gorm:"size:64"`
	Denomination   string `gorm:"size:32"`
	SerialNumber   string `gorm:"size:128"`
	Currency       string `gorm:"size:8"`
	Year           *int
	AdditionalInfo string `gorm:"type:text"`
}

func (BanknoteMetadataModel) TableName() string {
	return "banknote_metadata"
}

func toImageModel(e entity.Image) ImageModel {
	return ImageModel{
		OriginalName: e.OriginalName,
		HashName:     e.HashName,
		FilePath:     e.FilePath,
		FileSize:     e.FileSize,
		FileHash:     e.FileHash,
	}
}

func toRegionModel(imageID uint, e entity.ScanRegion) ScanRegionModel {
	return ScanRegionModel{
		ImageID:    imageID,
		RegionName: e.Name,
		X:          e.X,
		Y:          e.Y,
		Width:      e.Width,
		Height:     e.Height,
	}
}

func toMetadataModel(imageID uint, e entity.BanknoteMetadata) BanknoteMetadataModel {
	return BanknoteMetadataModel{
		ImageID:        imageID,
		Country:        e.Country,
		Denomination:   e.Denomination,
		SerialNumber:   e.SerialNumber,
		Currency:       e.Currency,
		Year:           e.Year,
		AdditionalInfo: e.AdditionalInfo,
	}
}

func toImageEntity(m ImageModel) entity.Image {
	img := entity.Image{
		ID:           m.ID,
		OriginalName: m.OriginalName,
		HashName:     m.HashName,
		FilePath:     m.FilePath,
		FileSize:     m.FileSize,
		FileHash:     m.FileHash,
		CreatedAt:    m.CreatedAt,
	}
	for _, r := range m.Regions {
		img.Regions = append(img.Regions, entity.ScanRegion{
			ID:      r.ID,
			ImageID: r.ImageID,
			Name:    r.RegionName,
			X:       r.X,
			Y:       r.Y,
			Width:   r.Width,
			Height:  r.Height,
		})
	}
	if m.Metadata != nil {
		img.Metadata = &entity.BanknoteMetadata{
			ID:             m.Metadata.ID,
			ImageID:        m.Metadata.ImageID,
			Country:        m.Metadata.Country,
			Denomination:   m.Metadata.Denomination,
			SerialNumber:   m.Metadata.SerialNumber,
			Currency:       m.Metadata.Currency,
			Year:           m.Metadata.Year,
			AdditionalInfo: m.Metadata.AdditionalInfo,
		}
	}
	return img
}

// Register は画像と子レコードを1トランザクションで作成します。
// file_hashが衝突した場合は何も挿入せず、既存の集約を返します。
// リージョンとメタデータは新規作成時にのみ書き込まれます。
func (r *imageGorm) Register(ctx context.Context, img entity.Image, regions []entity.ScanRegion, meta entity.BanknoteMetadata) (entity.Image, bool, error) {
	m := toImageModel(img)
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_hash"}},
			DoNothing: true,
		}).Create(&m)
		if res.Error != nil {
			return fmt.Errorf("insert image: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			// 同じ内容の画像が登録済み。既存レコードを読み直す
			if err := tx.Where("file_hash = ?", img.FileHash).First(&m).Error; err != nil {
				return fmt.Errorf("load existing image: %w", err)
			}
			return nil
		}
		created = true

		rms := make([]ScanRegionModel, 0, len(regions))
		for _, region := range regions {
			rms = append(rms, toRegionModel(m.ID, region))
		}
		if len(rms) > 0 {
			if err := tx.Create(&rms).Error; err != nil {
				return fmt.Errorf("insert scan regions: %w", err)
			}
		}

		mm := toMetadataModel(m.ID, meta)
		if err := tx.Create(&mm).Error; err != nil {
			return fmt.Errorf("insert banknote metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.Image{}, false, err
	}

	stored, err := r.FindByID(ctx, m.ID)
	if err != nil {
		return entity.Image{}, false, err
	}
	return stored, created, nil
}

func (r *imageGorm) FindByID(ctx context.Context, id uint) (entity.Image, error) {
	var m ImageModel
	err := r.db.WithContext(ctx).
		Preload("Regions", func(db *gorm.DB) *gorm.DB { return db.Order("scan_regions.id ASC") }).
		Preload("Metadata").
		First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Image{}, usecase.ErrImageNotFound
		}
		return entity.Image{}, err
	}
	return toImageEntity(m), nil
}

func (r *imageGorm) ListWithMetadata(ctx context.Context) ([]entity.Image, error) {
	var rows []ImageModel
	err := r.db.WithContext(ctx).
		Preload("Metadata").
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.Image, 0, len(rows))
	for _, m := range rows {
		out = append(out, toImageEntity(m))
	}
	return out, nil
}
