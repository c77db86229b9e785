// Package entity はcatalogフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Image は登録済みの紙幣スキャン画像を表します。
// 論理的な同一性はFileHash（内容ハッシュ）で決まり、同じ内容の
// ファイルは名前が違っても1レコードに集約されます。
type Image struct {
	ID           uint
	OriginalName string // アップロード時のファイル名
	HashName     string // 内容ハッシュ + 元の拡張子。データセット内でのファイル名
	FilePath     string // 保存先のパス
	FileSize     int64
	FileHash     string // 内容のBLAKE2b-256ハッシュ（16進）
	CreatedAt    time.Time
	Regions      []ScanRegion
	Metadata     *BanknoteMetadata
}

// ScanRegion は画像内でシリアル番号が印字されているはずの矩形領域です。
// 座標は画像の幅・高さに対する[0,1]の正規化値で、登録時に作成された後は変更されません。
type ScanRegion struct {
	ID      uint
	ImageID uint
	Name    string
	X       float64
	Y       float64
	Width   float64
	Height  float64
}

// BanknoteMetadata はファイル名から推測した紙幣の属性です。
// すべてベストエフォートで、判別できなかった項目は空のままになります。
type BanknoteMetadata struct {
	ID             uint
	ImageID        uint
	Country        string
	Denomination   string
	SerialNumber   string
	Currency       string
	Year           *int // ファイル名の年の位置が数字でない場合はnil
	AdditionalInfo string
}
