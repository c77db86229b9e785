package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogadapters "banknote_backend/internal/feature/catalog/adapters"
	recognitionadapters "banknote_backend/internal/feature/recognition/adapters"
	trainingadapters "banknote_backend/internal/feature/training/adapters"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Opener はDSNからgormコネクションを開く関数です。テストで差し替えられるよう分離しています。
type Opener func(dsn string) (*gorm.DB, error)

// Config はデータベース接続の設定です。
type Config struct {
	URL  string // PostgreSQLのDSN。空の場合はSQLiteファイルを使う
	Path string // SQLiteファイルのパス
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
// DATABASE_URLが無い場合はDB_PATH（既定: data/banknotes.db）のSQLiteになります。
func LoadConfigFromEnv() Config {
	cfg := Config{
		URL:  os.Getenv("DATABASE_URL"),
		Path: os.Getenv("DB_PATH"),
	}
	if cfg.Path == "" {
		cfg.Path = filepath.Join("data", "banknotes.db")
	}
	return cfg
}

// ConnectWithRetry はopenerが成功するまでリトライを繰り返します。
// timeoutを過ぎても接続できない場合は最後のエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB は環境変数に従ってデータベースへ接続し、スキーマを最新化して返します。
func OpenDB() *gorm.DB {
	cfg := LoadConfigFromEnv()

	var (
		db  *gorm.DB
		err error
	)

	if cfg.URL != "" {
		db, err = ConnectWithRetry(cfg.URL, 60*time.Second, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		})
		if err != nil {
			log.Fatalf("%v", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			log.Fatalf("failed to create database directory: %v", err)
		}
		db, err = gorm.Open(gsqlite.Open(cfg.Path), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open sqlite database: %v", err)
		}
	}

	// テーブルは常に最新化する。SQLiteの場合は初回起動でファイルごと作られる。
	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// Migrate は全フィーチャーの永続化モデルでスキーマを最新化します。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalogadapters.ImageModel{},
		&catalogadapters.ScanRegionModel{},
		&catalogadapters.BanknoteMetadataModel{},
		&recognitionadapters.RecognitionResultModel{},
		&recognitionadapters.RecognizedSymbolModel{},
		&recognitionadapters.RecognitionJobModel{},
		&trainingadapters.TrainingSessionModel{},
	)
}
