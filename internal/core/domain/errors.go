package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrIngestion indicates document fetch or extraction failed.
	// Fatal to the job, never retried.
	ErrIngestion = errors.New("document ingestion failed")

	// ErrDownload indicates the document could not be fetched
	ErrDownload = errors.New("document download failed")

	// ErrUnsupportedFormat indicates the document file type is not handled
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrAnalysis indicates structured query decomposition failed
	ErrAnalysis = errors.New("query analysis failed")

	// ErrRetrieval indicates a semantic search sub-query failed.
	// Absorbed locally as zero results, never fatal.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrRerank indicates relevance scoring failed.
	// Absorbed locally by falling back to the unranked input order.
	ErrRerank = errors.New("rerank failed")

	// ErrGeneration indicates decision generation failed.
	// Absorbed locally as a degraded decision, never raised past the
	// generator boundary.
	ErrGeneration = errors.New("decision generation failed")

	// ErrPipeline indicates the pipeline reached its terminal state
	// without a populated answer set, or a stage-fatal failure aborted
	// the traversal. The only error class surfaced to job submitters.
	ErrPipeline = errors.New("pipeline execution failed")

	// ErrServiceUnavailable indicates an external collaborator could not
	// be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// AnalysisError is the typed failure surfaced when the structured-extraction
// call fails or returns a schema violation. It carries the original cause;
// callers must not proceed to retrieval on a malformed analysis.
type AnalysisError struct {
	Question string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %q failed: %v", e.Question, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Is matches the ErrAnalysis sentinel so callers can classify with errors.Is.
func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysis }

// PipelineError wraps a stage-fatal failure with the stage that raised it.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("pipeline failed: %v", e.Err)
	}
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Is matches the ErrPipeline sentinel so callers can classify with errors.Is.
func (e *PipelineError) Is(target error) bool { return target == ErrPipeline }
