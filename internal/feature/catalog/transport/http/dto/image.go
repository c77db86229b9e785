// Package dto はcatalogフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import recognitiondto "banknote_backend/internal/feature/recognition/transport/http/dto"

// ErrorResponse はエラー時の共通レスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// ImageItem はカタログ一覧における画像1件のレスポンスDTOです。
// メタデータはファイル名から判別できた項目のみ値が入ります。
type ImageItem struct {
	ID           uint   `json:"id"`
	OriginalName string `json:"original_name"`
	HashName     string `json:"hash_name"`
	FilePath     string `json:"file_path"`
	Country      string `json:"country"`
	Denomination string `json:"denomination"`
	SerialNumber string `json:"serial_number"`
	Currency     string `json:"currency"`
	Year         *int   `json:"year"`
}

// ImagesResponse は画像一覧エンドポイントのレスポンスボディです。
type ImagesResponse struct {
	Images []ImageItem `json:"images"`
}

// UploadResponse は画像アップロードのレスポンスボディです。
// 登録された画像のIDと、その場で実行した認識の結果を返します。
type UploadResponse struct {
	ImageID       uint                                     `json:"image_id"`
	RecognitionID uint                                     `json:"recognition_id"`
	Result        recognitiondto.RecognitionResultResponse `json:"result"`
}
