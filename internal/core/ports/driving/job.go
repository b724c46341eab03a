package driving

import (
	"context"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// JobService is the submission surface for document-QA jobs.
type JobService interface {
	// Process runs the full document pipeline synchronously and returns
	// one decision per question, in question order. A job either fully
	// completes or fails as a whole; it never returns a partially-filled
	// answer list.
	Process(ctx context.Context, documentURL string, questions []string) (*domain.JobResult, error)

	// Submit enqueues a job for background processing and returns the
	// queued task for status polling.
	Submit(ctx context.Context, documentURL string, questions []string) (*domain.Task, error)

	// Status reports the state of an asynchronously submitted job.
	Status(ctx context.Context, taskID string) (*domain.JobStatusReport, error)

	// Ask answers a single question against a pre-indexed collection
	// using the interactive pipeline with its correction loop.
	Ask(ctx context.Context, collection, question string) (*domain.Decision, error)
}
