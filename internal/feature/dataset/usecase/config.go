// Package usecase はYOLO学習用データセットの組み立てロジックを実装します。
package usecase

import "os"

// Config はデータセット組み立ての入出力ディレクトリ設定です。
type Config struct {
	SourceDir string // 取り込み元。手動で集めたスキャン画像を置くディレクトリ
	OutputDir string // YOLO形式データセットの出力先
}

// LoadConfig は環境変数からデータセット設定を読み込みます。
// 未設定の場合は取り込み元manual、出力先datasetを使います。
func LoadConfig() Config {
	cfg := Config{
		SourceDir: os.Getenv("DATASET_SOURCE_DIR"),
		OutputDir: os.Getenv("DATASET_OUTPUT_DIR"),
	}
	if cfg.SourceDir == "" {
		cfg.SourceDir = "manual"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "dataset"
	}
	return cfg
}
