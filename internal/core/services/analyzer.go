package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
)

// Analyzer decomposes one free-text question into a structured query record.
// It owns the schema contract on top of the raw language-model call: a
// failed call or a malformed record surfaces as a typed AnalysisError, never
// as a partially-populated record.
type Analyzer struct {
	llm    driven.LanguageModel
	logger *slog.Logger
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(llm driven.LanguageModel, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		llm:    llm,
		logger: logger.With("component", "analyzer"),
	}
}

// Analyze runs structured decomposition for a single question.
func (a *Analyzer) Analyze(ctx context.Context, question string) (*domain.AnalyzedQuery, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &domain.AnalysisError{Question: question, Err: domain.ErrInvalidInput}
	}

	query, err := a.llm.AnalyzeQuery(ctx, question)
	if err != nil {
		return nil, &domain.AnalysisError{Question: question, Err: err}
	}
	if query == nil {
		return nil, &domain.AnalysisError{Question: question, Err: domain.ErrInvalidInput}
	}

	query.Normalize()
	if err := query.Validate(); err != nil {
		return nil, &domain.AnalysisError{Question: question, Err: err}
	}

	a.logger.Debug("question analyzed",
		"domain", query.Domain,
		"search_queries", len(query.SearchQueries),
		"hypotheses", len(query.Hypotheses),
	)
	return query, nil
}
