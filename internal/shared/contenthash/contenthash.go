// Package contenthash はファイル内容の指紋計算を提供します。
// 同一バイト列は常に同一のハッシュになるため、重複排除と
// データセット分割の両方のキーとして使用できます。
package contenthash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// chunkSize は読み込みバッファのサイズです。
// 大きなスキャン画像でもファイル全体をメモリへ載せずに処理します。
const chunkSize = 4096

// HashFile はファイル内容全体のBLAKE2b-256ダイジェストを計算し、16進文字列で返します。
// ファイルが読めない場合はラップ済みのI/Oエラーを返します。
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("init hasher: %w", err)
	}

	buf := make([]byte, chunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			// hash.Hash のWriteはエラーを返さない
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read %s: %w", path, readErr)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
