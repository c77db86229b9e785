package usecase

import "errors"

var (
	// ErrRegionNotFound は画像に指定IDのスキャンリージョンが無いことを表します。
	ErrRegionNotFound = errors.New("scan region not found")
	// ErrJobNotFound は指定IDのバッチ認識ジョブが無いことを表します。
	ErrJobNotFound = errors.New("recognition job not found")
	// ErrBatchQueueFull はバックグラウンド実行キューが満杯で受付できないことを表します。
	ErrBatchQueueFull = errors.New("batch queue is full")
)
