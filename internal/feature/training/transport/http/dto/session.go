// Package dto はtrainingフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// ErrorResponse はエラー時の共通レスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionItem は学習セッション1件のレスポンスDTOです。
// 未計測のメトリクスはnullで返します。
type SessionItem struct {
	ID                  uint     `json:"id"`
	ModelName           string   `json:"model_name"`
	StartTime           string   `json:"start_time"`
	EndTime             *string  `json:"end_time"`
	Epochs              int      `json:"epochs"`
	BatchSize           int      `json:"batch_size"`
	LearningRate        float64  `json:"learning_rate"`
	TrainImages         int      `json:"train_images"`
	ValImages           int      `json:"val_images"`
	BestAccuracy        *float64 `json:"best_accuracy"`
	BestPrecision       *float64 `json:"best_precision"`
	BestRecall          *float64 `json:"best_recall"`
	BestMAP50           *float64 `json:"best_map50"`
	BestMAP             *float64 `json:"best_map"`
	FinalLoss           *float64 `json:"final_loss"`
	TrainingTimeMinutes *float64 `json:"training_time_minutes"`
	Status              string   `json:"status"`
	CreatedAt           string   `json:"created_at"`
}

// SessionsResponse は学習セッション一覧のレスポンスボディです。
type SessionsResponse struct {
	Sessions []SessionItem `json:"sessions"`
}
