package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
	"github.com/rajeev-sr/hackrx/internal/graph"
)

const stageCorrect = "correct"

// maxCorrections bounds the generate -> correct loop. One corrective retry
// is the hard ceiling: the second decision stands whatever the critique
// says about it.
const maxCorrections = 1

// InteractivePipeline answers a single ad-hoc question against an already
// indexed collection. Unlike the batch pipeline it carries a correction
// loop: when the self-critique rejects a decision, generation runs once
// more with the critique injected as feedback.
type InteractivePipeline struct {
	index     driven.VectorIndex
	analyzer  *Analyzer
	reranker  *Reranker
	generator *Generator
	logger    *slog.Logger
	graph     *graph.Graph[*interactiveRun]
}

// InteractivePipelineConfig holds dependencies for InteractivePipeline.
type InteractivePipelineConfig struct {
	Index     driven.VectorIndex
	Analyzer  *Analyzer
	Reranker  *Reranker
	Generator *Generator
	Logger    *slog.Logger
}

// interactiveRun wraps the shared pipeline state with the run-local
// coordinates of a single question.
type interactiveRun struct {
	collection string
	question   string

	state       *domain.PipelineState
	decision    *domain.Decision
	corrections int
}

func (r *interactiveRun) analyzed() *domain.AnalyzedQuery {
	return r.state.AnalyzedQueries[0]
}

func (r *interactiveRun) contexts() []string {
	if len(r.state.RerankedContexts) > 0 {
		return r.state.RerankedContexts[0]
	}
	return r.state.SharedContext
}

// NewInteractivePipeline creates the single-question pipeline and assembles
// its graph.
func NewInteractivePipeline(cfg InteractivePipelineConfig) *InteractivePipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &InteractivePipeline{
		index:     cfg.Index,
		analyzer:  cfg.Analyzer,
		reranker:  cfg.Reranker,
		generator: cfg.Generator,
		logger:    logger.With("component", "interactive"),
	}

	g := graph.New[*interactiveRun]()
	g.AddNode(stageAnalyze, p.analyze)
	g.AddNode(stageRetrieve, p.retrieve)
	g.AddNode(stageRerank, p.rerank)
	g.AddNode(stageGenerate, p.generate)
	g.AddNode(stageCorrect, p.correct)

	g.SetEntryPoint(stageAnalyze)
	g.AddEdge(stageAnalyze, stageRetrieve)
	g.AddEdge(stageRetrieve, stageRerank)
	g.AddEdge(stageRerank, stageGenerate)
	g.AddConditionalEdge(stageGenerate, p.afterGenerate)
	g.AddEdge(stageCorrect, stageGenerate)

	p.graph = g
	return p
}

// Ask answers one question against collection. The collection must already
// hold an indexed document; Ask never ingests.
func (p *InteractivePipeline) Ask(ctx context.Context, collection, question string) (*domain.Decision, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}

	run := &interactiveRun{
		collection: collection,
		question:   question,
		state:      domain.NewPipelineState(),
	}
	if err := p.graph.Run(ctx, run); err != nil {
		return nil, &domain.PipelineError{Err: err}
	}

	p.logger.Info("question answered",
		"collection", collection,
		"decision", run.decision.Decision,
		"corrections", run.corrections,
	)
	return run.decision, nil
}

func (p *InteractivePipeline) analyze(ctx context.Context, run *interactiveRun) error {
	analyzed, err := p.analyzer.Analyze(ctx, run.question)
	if err != nil {
		return err
	}
	run.state.AnalyzedQueries = []*domain.AnalyzedQuery{analyzed}
	return nil
}

func (p *InteractivePipeline) retrieve(ctx context.Context, run *interactiveRun) error {
	analyzed := run.analyzed()
	passages, err := p.index.Search(ctx, analyzed.SearchQueries, analyzed.Domain, run.collection)
	if err != nil {
		return fmt.Errorf("search %s: %w", run.collection, err)
	}
	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}
	run.state.SharedContext = texts
	return nil
}

func (p *InteractivePipeline) rerank(ctx context.Context, run *interactiveRun) error {
	reranked := p.reranker.Rerank(ctx, run.question, run.state.SharedContext)
	run.state.RerankedContexts = [][]string{reranked}
	return nil
}

func (p *InteractivePipeline) generate(ctx context.Context, run *interactiveRun) error {
	decision, critique := p.generator.Decide(ctx, run.analyzed(), run.contexts(), run.state.CorrectionFeedback)
	run.decision = decision
	run.state.FinalAnswers = []domain.Decision{*decision}
	run.state.Critique = critique
	run.state.NeedsCorrection = critique.CorrectionNeeded
	return nil
}

// correct copies the rejecting critique into the feedback slot and clears
// the retry flag before generation runs again.
func (p *InteractivePipeline) correct(_ context.Context, run *interactiveRun) error {
	run.state.CorrectionFeedback = run.state.Critique
	run.state.NeedsCorrection = false
	run.corrections++
	p.logger.Info("correction pass scheduled",
		"collection", run.collection,
		"confidence", run.state.Critique.ConfidenceScore,
		"feedback", run.state.Critique.Feedback,
	)
	return nil
}

// afterGenerate routes to the correction node at most maxCorrections times;
// past the ceiling the current decision is final.
func (p *InteractivePipeline) afterGenerate(run *interactiveRun) string {
	if run.state.NeedsCorrection && run.corrections < maxCorrections {
		return stageCorrect
	}
	return graph.End
}
