package domain

// PipelineState is the mutable record threaded through the orchestrator
// graph. One instance exists per job, owned exclusively by that job's
// orchestrator; fields populate strictly in pipeline order and the whole
// state is discarded once the final answers are returned.
//
// AnalyzedQueries, RerankedContexts and FinalAnswers stay index-aligned with
// the job's question list whenever populated.
type PipelineState struct {
	// Chunks are the extracted document fragments. Written once during
	// preprocessing, domain-tagged after analysis, never mutated after
	// indexing.
	Chunks []Chunk

	// AnalyzedQueries holds one structured analysis per question.
	AnalyzedQueries []*AnalyzedQuery

	// SharedContext is the deduplicated pool of retrieved passage texts,
	// pooled across every question's search sub-queries.
	SharedContext []string

	// RerankedContexts holds the per-question passage ordering over the
	// shared pool.
	RerankedContexts [][]string

	// FinalAnswers is the terminal output, one decision per question.
	FinalAnswers []Decision

	// Fields below are used only by the single-question interactive
	// variant of the graph.

	// Critique is the self-assessment of the latest generated decision.
	Critique *Critique

	// CorrectionFeedback carries the critique of a rejected attempt into
	// the next generation pass.
	CorrectionFeedback *Critique

	// NeedsCorrection gates the retry edge. Set after generation, cleared
	// unconditionally once a correction pass has been scheduled.
	NeedsCorrection bool
}

// NewPipelineState returns an empty state ready for a traversal.
func NewPipelineState() *PipelineState {
	return &PipelineState{}
}

// AnswersComplete reports whether the terminal invariant holds: one answer
// per question, in question order.
func (s *PipelineState) AnswersComplete(questionCount int) bool {
	return len(s.FinalAnswers) == questionCount
}

// BatchDomain returns the domain tag applied to the whole batch: the first
// question's classification. Scoping every question's retrieval by the first
// answer's domain is a deliberate simplification carried over from the
// original design.
func (s *PipelineState) BatchDomain() string {
	if len(s.AnalyzedQueries) == 0 || s.AnalyzedQueries[0] == nil {
		return ""
	}
	return s.AnalyzedQueries[0].Domain
}
