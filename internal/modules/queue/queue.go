package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/reusedev/cutout-hub/internal/modules/logs"
)

var ErrQueueFull = errors.New("task queue is full")

type Task interface {
	ID() string
	Execute(ctx context.Context) error
}

type TaskQueue chan Task

func NewTaskQueue(size int) TaskQueue {
	return make(TaskQueue, size)
}

func (q TaskQueue) Enqueue(task Task) error {
	select {
	case q <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run starts every queued task on its own goroutine until ctx is done. Tasks still
// waiting in the queue at that point are dropped. wg is released once the dispatcher
// and every started task have returned.
func (q TaskQueue) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case task := <-q:
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := task.Execute(ctx); err != nil {
						logs.Logger.Err(err).Str("task_id", task.ID()).Msg("task failed")
					}
				}()
			case <-ctx.Done():
				logs.Logger.Info().Int("dropped", len(q)).Msg("task queue closed")
				return
			}
		}
	}()
}
