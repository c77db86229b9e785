// Package jobs は非同期タスク実行用の固定サイズワーカープールを提供します。
package jobs

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrQueueFull はタスクキューが満杯で新しいタスクを受け付けられないことを表します。
	ErrQueueFull = errors.New("jobs: task queue is full")
	// ErrStopped は停止済みのランナーへタスクが投入されたことを表します。
	ErrStopped = errors.New("jobs: runner is stopped")
)

// Task はワーカー上で実行される処理単位です。
// 渡されるcontextはStopで取り消されるため、長時間のタスクは適宜中断します。
type Task = func(ctx context.Context)

// Runner は固定数のワーカーでキュー上のタスクを実行するプールです。
// バッチ認識はDBへの書き込み順序を保つため、既定ではワーカー1で逐次実行します。
type Runner struct {
	queue  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewRunner はworkers個のワーカーとqueueSize分のバッファを持つRunnerを起動します。
// 引数が0以下の場合はワーカー1、キュー16の既定値を使います。
func NewRunner(workers, queueSize int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		queue:  make(chan Task, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

// worker はキューが閉じられるまでタスクを取り出して実行します。
func (r *Runner) worker() {
	defer r.wg.Done()
	for task := range r.queue {
		task(r.ctx)
	}
}

// Submit はタスクをキューへ登録します。ブロックはせず、
// キューが満杯の場合はErrQueueFull、停止済みの場合はErrStoppedを返します。
func (r *Runner) Submit(task func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrStopped
	}
	select {
	case r.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop は新規タスクの受付を止め、実行中とキュー済みのタスクが終わるまで待ちます。
// タスクには取り消し済みのcontextが渡るため、中断可能なタスクは速やかに切り上げます。
// 2回目以降の呼び出しは何もしません。
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	close(r.queue)
	r.wg.Wait()
}
