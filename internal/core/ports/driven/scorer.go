package driven

import "context"

// RelevanceScorer is the pairwise relevance function used by the reranker.
// Any cross-encoder-style scorer satisfies the contract as long as it is
// deterministic for fixed inputs.
type RelevanceScorer interface {
	// Score rates how relevant a candidate passage is to the question.
	// Higher is more relevant.
	Score(ctx context.Context, question, candidate string) (float64, error)

	// Name returns the scorer identifier for logging
	Name() string
}
