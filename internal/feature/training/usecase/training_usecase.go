// Package usecase は学習セッション履歴の参照ロジックを実装します。
package usecase

import (
	"context"

	"banknote_backend/internal/feature/training/domain/entity"
)

// defaultSessionLimit は件数指定が無い場合に返す履歴の件数です。
const defaultSessionLimit = 10

// SessionRepository は学習セッション履歴の読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SessionRepository interface {
	// ListSessions は新しい順に最大limit件の学習セッションを返します。
	ListSessions(ctx context.Context, limit int) ([]entity.TrainingSession, error)
}

// trainingUsecase は学習セッション履歴のユースケースを定義します。
type trainingUsecase struct {
	sessions SessionRepository
}

// NewTrainingUsecase はtrainingUsecaseの新しいインスタンスを生成します。
func NewTrainingUsecase(sessions SessionRepository) *trainingUsecase {
	return &trainingUsecase{sessions: sessions}
}

// ListSessions は学習セッション履歴を新しい順に返します。
// limitが0以下の場合は既定の件数に丸めます。
func (tu *trainingUsecase) ListSessions(ctx context.Context, limit int) ([]entity.TrainingSession, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	return tu.sessions.ListSessions(ctx, limit)
}
