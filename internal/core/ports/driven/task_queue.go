package driven

import (
	"context"
	"encoding/json"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// TaskQueue handles background task queuing and processing.
// Implementations can use Redis Streams (preferred) or an in-process queue
// for single-binary deployments.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout seconds. The task is marked as processing and will not be
	// returned to other workers. Returns nil, nil if the timeout is
	// reached with no tasks available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task, storing the
	// serialized result for later status polling.
	Ack(ctx context.Context, taskID string, result json.RawMessage) error

	// Nack indicates task processing failed. The task is re-enqueued with
	// an updated retry count, or moved to failed state once max retries
	// are exceeded.
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID (for status checking).
	// Returns domain.ErrNotFound when the task is unknown.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}
