package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banknote_backend/internal/feature/training/domain/entity"
	"banknote_backend/internal/feature/training/usecase"
)

// mockSessionRepository はSessionRepositoryインターフェースのモック実装です。
type mockSessionRepository struct {
	ListSessionsFunc func(ctx context.Context, limit int) ([]entity.TrainingSession, error)

	GotLimits []int
}

func (m *mockSessionRepository) ListSessions(ctx context.Context, limit int) ([]entity.TrainingSession, error) {
	m.GotLimits = append(m.GotLimits, limit)
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, limit)
	}
	return nil, nil
}

func TestTrainingUsecase_ListSessions(t *testing.T) {
	t.Parallel()

	t.Run("success: explicit limit is passed through", func(t *testing.T) {
		t.Parallel()

		repo := &mockSessionRepository{
			ListSessionsFunc: func(ctx context.Context, limit int) ([]entity.TrainingSession, error) {
				return []entity.TrainingSession{{ID: 1, ModelName: "yolov8n-run1"}}, nil
			},
		}
		tu := usecase.NewTrainingUsecase(repo)

		sessions, err := tu.ListSessions(context.Background(), 25)
		require.NoError(t, err)
		assert.Len(t, sessions, 1)
		assert.Equal(t, []int{25}, repo.GotLimits)
	})

	t.Run("success: zero and negative limits fall back to the default", func(t *testing.T) {
		t.Parallel()

		repo := &mockSessionRepository{}
		tu := usecase.NewTrainingUsecase(repo)

		_, err := tu.ListSessions(context.Background(), 0)
		require.NoError(t, err)
		_, err = tu.ListSessions(context.Background(), -3)
		require.NoError(t, err)

		assert.Equal(t, []int{10, 10}, repo.GotLimits)
	})

	t.Run("failure: repository error is returned as is", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("database connection failed")
		repo := &mockSessionRepository{
			ListSessionsFunc: func(ctx context.Context, limit int) ([]entity.TrainingSession, error) {
				return nil, wantErr
			},
		}
		tu := usecase.NewTrainingUsecase(repo)

		_, err := tu.ListSessions(context.Background(), 10)
		assert.ErrorIs(t, err, wantErr)
	})
}
