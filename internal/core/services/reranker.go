package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
)

// Reranker reorders a candidate passage set by relevance to the original
// question. A nil scorer makes it a pass-through. Scoring failure is
// absorbed: the candidates come back in their input order, never corrupted,
// never an error.
type Reranker struct {
	scorer driven.RelevanceScorer
	logger *slog.Logger
}

// NewReranker creates a new Reranker. scorer may be nil for pass-through
// behavior.
func NewReranker(scorer driven.RelevanceScorer, logger *slog.Logger) *Reranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reranker{
		scorer: scorer,
		logger: logger.With("component", "reranker"),
	}
}

// Rerank returns a permutation of candidates sorted score-descending, ties
// broken by input order. Empty input returns empty output.
func (r *Reranker) Rerank(ctx context.Context, question string, candidates []string) []string {
	if len(candidates) == 0 {
		return []string{}
	}

	out := make([]string, len(candidates))
	copy(out, candidates)

	if r.scorer == nil {
		return out
	}

	scores := make([]float64, len(out))
	for i, candidate := range out {
		score, err := r.scorer.Score(ctx, question, candidate)
		if err != nil {
			r.logger.Warn("relevance scoring failed, keeping retrieval order",
				"scorer", r.scorer.Name(),
				"error", err,
			)
			copy(out, candidates)
			return out
		}
		scores[i] = score
	}

	indices := make([]int, len(out))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	ranked := make([]string, len(out))
	for pos, idx := range indices {
		ranked[pos] = out[idx]
	}
	return ranked
}
