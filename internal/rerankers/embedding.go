package rerankers

import (
	"context"
	"fmt"
	"math"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
)

// Embedding scores a candidate by cosine similarity between the question
// and candidate embeddings. Scores are shifted into [0, 1] so they compose
// with overlap-based scorers.
type Embedding struct {
	embedder driven.EmbeddingService
}

// NewEmbedding creates an Embedding scorer backed by embedder.
func NewEmbedding(embedder driven.EmbeddingService) *Embedding {
	return &Embedding{embedder: embedder}
}

func (e *Embedding) Name() string {
	return fmt.Sprintf("embedding-cosine(%s)", e.embedder.Model())
}

func (e *Embedding) Score(ctx context.Context, question, candidate string) (float64, error) {
	vectors, err := e.embedder.Embed(ctx, []string{question, candidate})
	if err != nil {
		return 0, fmt.Errorf("%w: embed for rerank: %w", domain.ErrRerank, err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("%w: expected 2 vectors, got %d", domain.ErrRerank, len(vectors))
	}
	return (cosine(vectors[0], vectors[1]) + 1) / 2, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
