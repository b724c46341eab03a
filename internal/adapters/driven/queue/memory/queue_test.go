package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

func newJobTask(t *testing.T) *domain.Task {
	t.Helper()
	job := domain.NewJob("https://example.com/policy.pdf", []string{"q"})
	task, err := domain.NewProcessJobTask(job)
	require.NoError(t, err)
	return task
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()
	ctx := context.Background()

	task := newJobTask(t)
	require.NoError(t, q.Enqueue(ctx, task))

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, domain.TaskStatusProcessing, got.Status)
}

func TestMemoryQueueDequeueTimeout(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()

	got, err := q.DequeueWithTimeout(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryQueueAck(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()
	ctx := context.Background()

	task := newJobTask(t)
	require.NoError(t, q.Enqueue(ctx, task))
	_, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)

	result := json.RawMessage(`{"job_id":"j1","answers":[]}`)
	require.NoError(t, q.Ack(ctx, task.ID, result))

	stored, err := q.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)
	assert.JSONEq(t, string(result), string(stored.Result))
}

func TestMemoryQueueNackFailsAfterRetries(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()
	ctx := context.Background()

	task := newJobTask(t)
	task.MaxAttempts = 1
	require.NoError(t, q.Enqueue(ctx, task))
	_, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, q.Nack(ctx, task.ID, "boom"))

	stored, err := q.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)
	assert.Equal(t, "boom", stored.Error)
}

func TestMemoryQueueGetTaskNotFound(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()

	_, err := q.GetTask(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryQueueClose(t *testing.T) {
	q := NewQueue(0)
	require.NoError(t, q.Close())
	assert.Error(t, q.Ping(context.Background()))
	assert.Error(t, q.Enqueue(context.Background(), newJobTask(t)))
}
