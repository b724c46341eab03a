package driven

import (
	"context"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// VectorIndex is the semantic search engine boundary (Qdrant).
// One collection exists per job; collection identity is the job ID, so a
// collection is only ever written by its job's indexing stage and only ever
// read by that job's retrieval stage.
type VectorIndex interface {
	// Index embeds and upserts chunks into the named collection.
	// Recreating a collection with the same name replaces its contents,
	// making the call idempotent per collection.
	Index(ctx context.Context, chunks []domain.Chunk, collection string) (domain.IndexingStatus, error)

	// Search runs every query independently and concurrently against the
	// collection, scoped to the given domain tag when non-empty. A single
	// query's failure contributes zero results rather than aborting the
	// batch. Results are merged by point ID keeping the highest score and
	// returned score-descending.
	Search(ctx context.Context, queries []string, domainTag, collection string) ([]domain.Passage, error)

	// DeleteCollection removes a job's collection. Collections are
	// ephemeral per-job storage, not durable records.
	DeleteCollection(ctx context.Context, collection string) error

	// HealthCheck verifies the index backend is available
	HealthCheck(ctx context.Context) error
}
