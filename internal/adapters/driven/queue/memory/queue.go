// Package memory implements the task queue in process memory, for
// single-binary deployments where server and worker share one process.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue with an in-memory buffer. Tasks do not
// survive process restarts.
type Queue struct {
	mu     sync.Mutex
	tasks  map[string]*domain.Task
	ready  chan string
	closed bool
}

// NewQueue creates an in-memory task queue with the given buffer size.
func NewQueue(buffer int) *Queue {
	if buffer <= 0 {
		buffer = 128
	}
	return &Queue{
		tasks: make(map[string]*domain.Task),
		ready: make(chan string, buffer),
	}
}

// Enqueue adds a task to the queue for processing.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errors.New("queue is closed")
	}
	q.tasks[task.ID] = task
	q.mu.Unlock()

	select {
	case q.ready <- task.ID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DequeueWithTimeout retrieves the next ready task, waiting up to timeout
// seconds. Tasks whose retry backoff has not elapsed are requeued.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	deadline := time.NewTimer(time.Duration(timeout) * time.Second)
	defer deadline.Stop()

	for {
		select {
		case taskID, ok := <-q.ready:
			if !ok {
				return nil, nil
			}

			q.mu.Lock()
			task, exists := q.tasks[taskID]
			if !exists {
				q.mu.Unlock()
				continue
			}
			if !task.IsReady() {
				// Backoff not elapsed yet, push it back
				q.mu.Unlock()
				select {
				case q.ready <- taskID:
				default:
				}
				select {
				case <-time.After(100 * time.Millisecond):
					continue
				case <-deadline.C:
					return nil, nil
				case <-ctx.Done():
					return nil, nil
				}
			}
			task.MarkProcessing()
			q.mu.Unlock()
			return task, nil

		case <-deadline.C:
			return nil, nil
		case <-ctx.Done():
			return nil, nil
		}
	}
}

// Ack acknowledges successful completion of a task, storing its result.
func (q *Queue) Ack(ctx context.Context, taskID string, result json.RawMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
	}
	task.MarkCompleted(result)
	return nil
}

// Nack retries the task with backoff, or marks it failed when retries are
// exhausted.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	q.mu.Lock()
	task, ok := q.tasks[taskID]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
	}

	retry := task.CanRetry()
	if retry {
		task.Retry(reason)
	} else {
		task.MarkFailed(reason)
	}
	q.mu.Unlock()

	if retry {
		select {
		case q.ready <- taskID:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// GetTask retrieves a task by ID.
func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
	}
	// Copy so callers never observe in-place status transitions.
	snapshot := *task
	return &snapshot, nil
}

// Ping reports queue health.
func (q *Queue) Ping(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("queue is closed")
	}
	return nil
}

// Close shuts the queue down. Pending tasks are dropped.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ready)
	}
	return nil
}
