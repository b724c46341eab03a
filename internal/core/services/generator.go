package services

import (
	"context"
	"log/slog"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
)

// Generator synthesizes a structured decision plus a self-critique from an
// analyzed query and its supporting passages. Generation failure never
// escapes this boundary: callers always get a decision/critique pair, with
// the degraded "Error" record standing in when the model call failed.
type Generator struct {
	llm    driven.LanguageModel
	logger *slog.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(llm driven.LanguageModel, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		llm:    llm,
		logger: logger.With("component", "generator"),
	}
}

// Decide produces a decision and critique for one question. passages must be
// in rerank order; feedback, when non-nil, is the critique of a rejected
// prior attempt and is injected as corrective instruction.
func (g *Generator) Decide(ctx context.Context, query *domain.AnalyzedQuery, passages []string, feedback *domain.Critique) (*domain.Decision, *domain.Critique) {
	decision, critique, err := g.llm.GenerateDecision(ctx, query, passages, feedback)
	if err != nil {
		g.logger.Warn("generation failed, returning degraded decision",
			"domain", query.Domain,
			"error", err,
		)
		return domain.DegradedDecision(err)
	}
	if decision == nil || critique == nil {
		g.logger.Warn("model returned an incomplete pair, returning degraded decision",
			"domain", query.Domain,
		)
		return domain.DegradedDecision(domain.ErrGeneration)
	}

	g.logger.Debug("decision generated",
		"decision", decision.Decision,
		"confidence", critique.ConfidenceScore,
		"correction_needed", critique.CorrectionNeeded,
		"second_attempt", feedback != nil,
	)
	return decision, critique
}
