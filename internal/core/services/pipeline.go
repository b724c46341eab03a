package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
	"github.com/rajeev-sr/hackrx/internal/graph"
)

// Batch graph stage names. Every edge is unconditional: the production
// document-job path has no correction loop, each question gets exactly one
// generation pass.
const (
	stagePreprocess = "preprocess"
	stageAnalyze    = "analyze"
	stageLoadIndex  = "load_index"
	stageWaitIndex  = "wait_index"
	stageRetrieve   = "retrieve"
	stageRerank     = "rerank"
	stageGenerate   = "generate"
)

// StageObserver receives per-stage timings, typically wired to metrics.
type StageObserver func(stage string, elapsed time.Duration)

// DocumentPipeline coordinates the document QA flow for one job:
//
//	preprocess -> analyze -> load_index -> wait_index ->
//	retrieve -> rerank -> generate
//
// Stages run strictly in order; concurrency exists only within a stage
// (per-question analysis, per-sub-query retrieval, per-question rerank and
// generation), and every fan-out is joined before the next stage starts.
type DocumentPipeline struct {
	loader    driven.DocumentLoader
	index     driven.VectorIndex
	analyzer  *Analyzer
	reranker  *Reranker
	generator *Generator

	// settleDelay bounds index staleness when the backend did not
	// acknowledge write visibility.
	settleDelay time.Duration

	observe StageObserver
	logger  *slog.Logger
	graph   *graph.Graph[*pipelineRun]
}

// DocumentPipelineConfig holds dependencies for DocumentPipeline.
type DocumentPipelineConfig struct {
	Loader      driven.DocumentLoader
	Index       driven.VectorIndex
	Analyzer    *Analyzer
	Reranker    *Reranker
	Generator   *Generator
	SettleDelay time.Duration
	Observer    StageObserver
	Logger      *slog.Logger
}

// pipelineRun is the per-traversal context: one job, one state, owned by a
// single goroutine for the duration of the run.
type pipelineRun struct {
	job       *domain.Job
	state     *domain.PipelineState
	indexed   domain.IndexingStatus
	lastStage string
}

// NewDocumentPipeline creates the batch pipeline and assembles its graph.
func NewDocumentPipeline(cfg DocumentPipelineConfig) *DocumentPipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &DocumentPipeline{
		loader:      cfg.Loader,
		index:       cfg.Index,
		analyzer:    cfg.Analyzer,
		reranker:    cfg.Reranker,
		generator:   cfg.Generator,
		settleDelay: cfg.SettleDelay,
		observe:     cfg.Observer,
		logger:      logger.With("component", "pipeline"),
	}

	g := graph.New[*pipelineRun]()
	g.AddNode(stagePreprocess, p.timed(stagePreprocess, p.preprocess))
	g.AddNode(stageAnalyze, p.timed(stageAnalyze, p.analyze))
	g.AddNode(stageLoadIndex, p.timed(stageLoadIndex, p.loadIndex))
	g.AddNode(stageWaitIndex, p.timed(stageWaitIndex, p.waitIndex))
	g.AddNode(stageRetrieve, p.timed(stageRetrieve, p.retrieve))
	g.AddNode(stageRerank, p.timed(stageRerank, p.rerank))
	g.AddNode(stageGenerate, p.timed(stageGenerate, p.generate))

	g.SetEntryPoint(stagePreprocess)
	g.AddEdge(stagePreprocess, stageAnalyze)
	g.AddEdge(stageAnalyze, stageLoadIndex)
	g.AddEdge(stageLoadIndex, stageWaitIndex)
	g.AddEdge(stageWaitIndex, stageRetrieve)
	g.AddEdge(stageRetrieve, stageRerank)
	g.AddEdge(stageRerank, stageGenerate)
	g.AddEdge(stageGenerate, graph.End)

	p.graph = g
	return p
}

// Execute runs the full pipeline for one job and returns one answer per
// question, in question order. An empty question batch short-circuits with
// an empty answer set and no collaborator calls. Any stage-fatal failure
// surfaces as a PipelineError; the job never partially returns.
func (p *DocumentPipeline) Execute(ctx context.Context, job *domain.Job) ([]domain.Decision, error) {
	if len(job.Questions) == 0 {
		p.logger.Info("empty question batch, short-circuiting", "job_id", job.ID)
		return []domain.Decision{}, nil
	}

	start := time.Now()
	p.logger.Info("starting pipeline",
		"job_id", job.ID,
		"document_url", job.DocumentURL,
		"questions", len(job.Questions),
	)

	run := &pipelineRun{job: job, state: domain.NewPipelineState()}

	err := p.graph.Run(ctx, run)

	// The collection is ephemeral per-job storage; drop it regardless of
	// outcome once the traversal is over.
	if run.indexed.Collection != "" {
		if delErr := p.index.DeleteCollection(context.WithoutCancel(ctx), run.indexed.Collection); delErr != nil {
			p.logger.Warn("failed to delete job collection", "collection", run.indexed.Collection, "error", delErr)
		}
	}

	if err != nil {
		return nil, &domain.PipelineError{Stage: run.lastStage, Err: err}
	}
	if !run.state.AnswersComplete(len(job.Questions)) {
		return nil, &domain.PipelineError{
			Stage: stageGenerate,
			Err:   fmt.Errorf("terminal state reached with %d of %d answers", len(run.state.FinalAnswers), len(job.Questions)),
		}
	}

	p.logger.Info("pipeline completed",
		"job_id", job.ID,
		"duration", time.Since(start),
		"answers", len(run.state.FinalAnswers),
	)
	return run.state.FinalAnswers, nil
}

// timed wraps a stage with timing and the optional observer.
func (p *DocumentPipeline) timed(name string, fn graph.NodeFunc[*pipelineRun]) graph.NodeFunc[*pipelineRun] {
	return func(ctx context.Context, run *pipelineRun) error {
		run.lastStage = name
		start := time.Now()
		err := fn(ctx, run)
		elapsed := time.Since(start)
		if p.observe != nil {
			p.observe(name, elapsed)
		}
		p.logger.Debug("stage finished", "stage", name, "duration", elapsed, "job_id", run.job.ID)
		return err
	}
}

// preprocess fetches the document and extracts its chunks.
func (p *DocumentPipeline) preprocess(ctx context.Context, run *pipelineRun) error {
	chunks, err := p.loader.Load(ctx, run.job.DocumentURL)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: document yielded no extractable text", domain.ErrIngestion)
	}
	run.state.Chunks = chunks
	return nil
}

// analyze decomposes every question concurrently and recombines the results
// by index. One analysis failure fails the whole job. The batch domain is
// the first question's classification; it is stamped onto every chunk so
// indexing and retrieval share the same scope.
func (p *DocumentPipeline) analyze(ctx context.Context, run *pipelineRun) error {
	analyzed := make([]*domain.AnalyzedQuery, len(run.job.Questions))

	eg, gctx := errgroup.WithContext(ctx)
	for i, question := range run.job.Questions {
		eg.Go(func() error {
			query, err := p.analyzer.Analyze(gctx, question)
			if err != nil {
				return err
			}
			analyzed[i] = query
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	run.state.AnalyzedQueries = analyzed

	batchDomain := run.state.BatchDomain()
	for i := range run.state.Chunks {
		run.state.Chunks[i].SetDomain(batchDomain)
	}
	p.logger.Info("questions analyzed", "job_id", run.job.ID, "batch_domain", batchDomain)
	return nil
}

// loadIndex recreates the job's collection and writes all chunks.
func (p *DocumentPipeline) loadIndex(ctx context.Context, run *pipelineRun) error {
	status, err := p.index.Index(ctx, run.state.Chunks, run.job.Collection())
	if err != nil {
		return fmt.Errorf("index %d chunks into %s: %w", len(run.state.Chunks), run.job.Collection(), err)
	}
	run.indexed = status
	return nil
}

// waitIndex bounds the write-to-read staleness window. When the backend
// acknowledged write visibility there is nothing to wait for; otherwise
// sleep out the configured settle delay.
func (p *DocumentPipeline) waitIndex(ctx context.Context, run *pipelineRun) error {
	if run.indexed.Acknowledged || p.settleDelay <= 0 {
		return nil
	}
	p.logger.Debug("waiting for index visibility", "job_id", run.job.ID, "delay", p.settleDelay)
	select {
	case <-time.After(p.settleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retrieve pools every question's search sub-queries into one search call.
// The index boundary fans the sub-queries out concurrently, absorbs
// per-query failures and returns a deduplicated, score-descending pool;
// only the passage texts cross into the state.
func (p *DocumentPipeline) retrieve(ctx context.Context, run *pipelineRun) error {
	var queries []string
	for _, analyzed := range run.state.AnalyzedQueries {
		queries = append(queries, analyzed.SearchQueries...)
	}

	passages, err := p.index.Search(ctx, queries, run.state.BatchDomain(), run.job.Collection())
	if err != nil {
		return fmt.Errorf("search %s: %w", run.job.Collection(), err)
	}

	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}
	run.state.SharedContext = texts

	p.logger.Info("context retrieved",
		"job_id", run.job.ID,
		"sub_queries", len(queries),
		"passages", len(texts),
	)
	return nil
}

// rerank orders the shared pool per question, concurrently. Rerank failures
// are absorbed inside the Reranker, so the fan-out cannot fail; the group
// still bounds the stage until every question's ordering is in place.
func (p *DocumentPipeline) rerank(ctx context.Context, run *pipelineRun) error {
	ranked := make([][]string, len(run.job.Questions))

	eg, gctx := errgroup.WithContext(ctx)
	for i, question := range run.job.Questions {
		eg.Go(func() error {
			ranked[i] = p.reranker.Rerank(gctx, question, run.state.SharedContext)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	run.state.RerankedContexts = ranked
	return nil
}

// generate produces one decision per question, concurrently, with no
// correction loop. Generation failures are absorbed inside the Generator as
// degraded decisions, so the stage always yields a full answer set.
func (p *DocumentPipeline) generate(ctx context.Context, run *pipelineRun) error {
	answers := make([]domain.Decision, len(run.job.Questions))

	eg, gctx := errgroup.WithContext(ctx)
	for i := range run.job.Questions {
		eg.Go(func() error {
			decision, critique := p.generator.Decide(gctx, run.state.AnalyzedQueries[i], run.state.RerankedContexts[i], nil)
			answers[i] = *decision
			if critique.CorrectionNeeded {
				// Batch mode terminates after one pass; a correction
				// request is recorded, not acted on.
				p.logger.Info("critique requested correction in batch mode",
					"job_id", run.job.ID,
					"question_index", i,
					"confidence", critique.ConfidenceScore,
				)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	run.state.FinalAnswers = answers
	return nil
}
