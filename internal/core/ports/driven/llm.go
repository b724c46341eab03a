package driven

import (
	"context"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// LanguageModel is the black-box structured-output boundary around the
// generative model. It performs query decomposition and decision synthesis;
// the Analyzer and Generator services own validation and failure policy on
// top of it.
type LanguageModel interface {
	// AnalyzeQuery decomposes one free-text question into a structured
	// query record.
	AnalyzeQuery(ctx context.Context, question string) (*domain.AnalyzedQuery, error)

	// GenerateDecision synthesizes a decision plus a self-critique from an
	// analyzed query and its supporting passages, concatenated in the
	// order supplied. A non-nil feedback marks a second attempt: the prior
	// critique must be injected as corrective instruction.
	GenerateDecision(ctx context.Context, query *domain.AnalyzedQuery, passages []string, feedback *domain.Critique) (*domain.Decision, *domain.Critique, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the model endpoint is reachable
	Ping(ctx context.Context) error

	// Close releases resources held by the client
	Close() error
}
