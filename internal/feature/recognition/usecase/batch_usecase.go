package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"banknote_backend/internal/feature/recognition/domain/entity"
)

// StartBatch はバッチ認識ジョブを永続化し、バックグラウンド実行を開始します。
// 投げっぱなしにはならず、戻り値のジョブIDで進行状況と完了を照会できます。
// 実行キューが受け付けられない場合はErrBatchQueueFullを返し、ジョブは失敗として記録されます。
func (ru *recognitionUsecase) StartBatch(ctx context.Context, imageIDs []uint) (entity.RecognitionJob, error) {
	job := entity.RecognitionJob{
		ID:          uuid.NewString(),
		Status:      entity.JobStatusPending,
		TotalImages: len(imageIDs),
	}
	if err := ru.jobs.CreateJob(ctx, job); err != nil {
		return entity.RecognitionJob{}, fmt.Errorf("create recognition job: %w", err)
	}

	// タスクはリクエストより長生きするため、呼び出し側のスライスから切り離す
	ids := make([]uint, len(imageIDs))
	copy(ids, imageIDs)

	err := ru.runner.Submit(func(taskCtx context.Context) {
		ru.runBatch(taskCtx, job.ID, ids)
	})
	if err != nil {
		slog.Warn("バッチ認識を受け付けられませんでした", "job_id", job.ID, "error", err)
		job.Status = entity.JobStatusFailed
		job.ErrorMessage = err.Error()
		ru.saveJob(ctx, &job)
		return entity.RecognitionJob{}, ErrBatchQueueFull
	}

	slog.Info("バッチ認識を開始しました", "job_id", job.ID, "image_count", len(ids))
	return job, nil
}

// BatchRecognize は画像ID群を順に認識し、リージョンごとのサマリーを返します。
// レコードやソースファイルが無い画像は警告ログの上でスキップされ、結果から除外されます。
func (ru *recognitionUsecase) BatchRecognize(ctx context.Context, imageIDs []uint) []entity.BatchSummary {
	summaries := make([]entity.BatchSummary, 0, len(imageIDs))
	for _, id := range imageIDs {
		s, _ := ru.processImage(ctx, id)
		summaries = append(summaries, s...)
	}
	return summaries
}

// runBatch はワーカー上で実行されるバッチ本体です。1画像処理するごとに
// 進行状況をジョブレコードへ反映します。
func (ru *recognitionUsecase) runBatch(ctx context.Context, jobID string, imageIDs []uint) {
	job, err := ru.jobs.FindJob(ctx, jobID)
	if err != nil {
		slog.Error("バッチジョブの取得に失敗しました", "job_id", jobID, "error", err)
		return
	}

	started := time.Now()
	job.Status = entity.JobStatusRunning
	job.StartedAt = &started
	ru.saveJob(ctx, &job)

	for _, id := range imageIDs {
		if ctx.Err() != nil {
			job.Status = entity.JobStatusFailed
			job.ErrorMessage = "batch aborted: " + ctx.Err().Error()
			break
		}
		if _, ok := ru.processImage(ctx, id); ok {
			job.ProcessedImages++
		} else {
			job.SkippedImages++
		}
		ru.saveJob(ctx, &job)
	}

	finished := time.Now()
	job.FinishedAt = &finished
	if job.Status != entity.JobStatusFailed {
		job.Status = entity.JobStatusCompleted
	}
	// シャットダウン中でも最終状態は書き残す
	ru.saveJob(context.WithoutCancel(ctx), &job)

	slog.Info("バッチ認識が終了しました",
		"job_id", jobID, "status", job.Status,
		"processed", job.ProcessedImages, "skipped", job.SkippedImages)
}

// processImage は1画像の全リージョンを順に認識・保存します。
// 画像レコードまたはソースファイルが無い場合はスキップ扱い（false）になります。
func (ru *recognitionUsecase) processImage(ctx context.Context, imageID uint) ([]entity.BatchSummary, bool) {
	img, err := ru.images.FindByID(ctx, imageID)
	if err != nil {
		slog.Warn("画像レコードが見つからないためスキップします", "image_id", imageID, "error", err)
		return nil, false
	}
	if _, err := os.Stat(img.FilePath); err != nil {
		slog.Warn("ソースファイルが見つからないためスキップします", "image_id", imageID, "path", img.FilePath)
		return nil, false
	}

	summaries := make([]entity.BatchSummary, 0, len(img.Regions))
	for _, region := range img.Regions {
		// 推論サービスのレートリミットを考慮して、リクエスト間に適切な待機時間を設ける
		if ru.detector != nil && ru.limiter != nil {
			ru.limiter.WaitIfNeeded()
		}
		result := ru.Recognize(ctx, img.FilePath, region)
		stored, err := ru.results.AddRecognition(ctx, result)
		if err != nil {
			slog.Error("認識結果の保存に失敗しました",
				"image_id", imageID, "region_id", region.ID, "error", err)
			continue
		}
		summaries = append(summaries, entity.BatchSummary{
			ImageID:       img.ID,
			RegionID:      region.ID,
			RecognitionID: stored.ID,
			SerialNumber:  stored.SerialNumber,
			Confidence:    stored.Confidence,
		})
	}
	return summaries, true
}

// saveJob はジョブ状態の保存を試み、失敗してもバッチ処理自体は止めません。
func (ru *recognitionUsecase) saveJob(ctx context.Context, job *entity.RecognitionJob) {
	if err := ru.jobs.UpdateJob(ctx, *job); err != nil {
		slog.Error("ジョブ状態の更新に失敗しました", "job_id", job.ID, "error", err)
	}
}
