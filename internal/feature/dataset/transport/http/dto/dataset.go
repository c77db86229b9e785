// Package dto はdatasetフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// ErrorResponse はエラー時の共通レスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// PrepareResponse はデータセットへ取り込んだ画像の件数を報告します。
type PrepareResponse struct {
	Status         string `json:"status"`
	ProcessedCount int    `json:"processed_count"`
}
