package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	catalogentity "banknote_backend/internal/feature/catalog/domain/entity"
)

// ImageRegistrar は取り込んだ画像をカタログへ登録するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ImageRegistrar interface {
	// RegisterImage はファイルを内容ハッシュで重複排除しながらカタログへ登録します。
	RegisterImage(ctx context.Context, originalName, filePath string) (catalogentity.Image, error)
}

// datasetUsecase は取り込みディレクトリの画像からYOLO学習用データセットを組み立てます。
type datasetUsecase struct {
	cfg       Config
	registrar ImageRegistrar
}

// NewDatasetUsecase はdatasetUsecaseの新しいインスタンスを生成します。
func NewDatasetUsecase(cfg Config, registrar ImageRegistrar) *datasetUsecase {
	return &datasetUsecase{cfg: cfg, registrar: registrar}
}

// BucketFor は画像IDから学習・検証の振り分け先を返します。
// IDが5の倍数の画像だけをvalへ回す決定的な約80/20分割で、
// 同じ画像は何度組み立て直しても必ず同じ側に入ります。
func BucketFor(id uint) string {
	if id%5 == 0 {
		return "val"
	}
	return "train"
}

// PrepareDataset は取り込みディレクトリの画像をカタログへ登録し、
// ハッシュ名でデータセットへコピーして空のラベルファイルを用意します。
// 個々の画像の失敗はログに残してスキップし、成功した件数を返します。
func (du *datasetUsecase) PrepareDataset(ctx context.Context) (int, error) {
	if err := du.ensureLayout(); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(du.cfg.SourceDir)
	if err != nil {
		return 0, fmt.Errorf("read source dir: %w", err)
	}

	processed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(du.cfg.SourceDir, entry.Name())
		if err := du.processOne(ctx, entry.Name(), path); err != nil {
			slog.Warn("画像の取り込みに失敗したためスキップします", "file", entry.Name(), "error", err)
			continue
		}
		processed++
	}

	slog.Info("データセットの組み立てが完了しました",
		"processed", processed, "source", du.cfg.SourceDir, "output", du.cfg.OutputDir)
	return processed, nil
}

// processOne は1ファイルを登録し、振り分け先へコピーしてラベルファイルを作成します。
func (du *datasetUsecase) processOne(ctx context.Context, name, path string) error {
	img, err := du.registrar.RegisterImage(ctx, name, path)
	if err != nil {
		return err
	}

	bucket := BucketFor(img.ID)
	dst := filepath.Join(du.cfg.OutputDir, "images", bucket, img.HashName)
	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("copy into dataset: %w", err)
	}

	label := filepath.Join(du.cfg.OutputDir, "labels", bucket, img.FileHash+".txt")
	if err := touchLabel(label); err != nil {
		return fmt.Errorf("create label file: %w", err)
	}
	return nil
}

// ensureLayout はYOLO形式のimages/labels×train/valディレクトリを作成します。
func (du *datasetUsecase) ensureLayout() error {
	for _, dir := range []string{
		filepath.Join(du.cfg.OutputDir, "images", "train"),
		filepath.Join(du.cfg.OutputDir, "images", "val"),
		filepath.Join(du.cfg.OutputDir, "labels", "train"),
		filepath.Join(du.cfg.OutputDir, "labels", "val"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset layout: %w", err)
		}
	}
	return nil
}

// isImageFile は拡張子が取り込み対象の画像形式かどうかを返します。大文字小文字は区別しません。
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// copyFile はsrcをdstへコピーします。dstが既にある場合は上書きします。
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			slog.Warn("取り込み元ファイルのクローズに失敗", "file", src, "error", err)
		}
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// touchLabel は空のラベルファイルを作成します。既にある場合は中身をそのまま残します。
func touchLabel(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
