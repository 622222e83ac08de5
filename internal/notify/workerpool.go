package notify

import (
	"context"

	"go.uber.org/zap"
)

// WorkerPoolI and WorkerPool are carried over from the teacher's
// accrual package almost verbatim: a bounded channel of tasks drained
// by a fixed number of background goroutines. Here it backs the
// Notification Dispatcher (C6) instead of the accrual poller.
type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

type Task func() error

type WorkerPool struct {
	pool chan Task
}

func NewWorkerPool(size int) *WorkerPool {
	pool := make(chan Task, size)
	wp := &WorkerPool{pool: pool}

	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	for task := range wp.pool {
		// Dispatcher failures never surface to callers and never alter
		// engine state (spec §4.6): log and move on.
		if err := task(); err != nil {
			zap.L().Error("notification task failed", zap.Error(err))
		}
	}
}

func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.pool <- task:
		return nil
	}
}

func (wp *WorkerPool) Close() {
	select {
	case <-wp.pool:
	default:
		close(wp.pool)
	}
}
